package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/bairigao/video-transcoding/internal/port"
)

const capabilitiesTimeout = 10 * time.Second

// DescribeCapabilities lists the container formats and codecs the
// installed ffmpeg knows about. Diagnostic use only.
func (d *Driver) DescribeCapabilities(ctx context.Context) (*port.Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, capabilitiesTimeout)
	defer cancel()

	version, err := d.run(ctx, "-version")
	if err != nil {
		return nil, err
	}
	formats, err := d.run(ctx, "-hide_banner", "-formats")
	if err != nil {
		return nil, err
	}
	codecs, err := d.run(ctx, "-hide_banner", "-codecs")
	if err != nil {
		return nil, err
	}

	return &port.Capabilities{
		Version: firstLine(version),
		Formats: parseFormats(formats),
		Codecs:  parseCodecs(codecs),
	}, nil
}

func (d *Driver) run(ctx context.Context, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w: %s", d.ffmpegPath, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

// parseFormats reads the table printed by `ffmpeg -formats`. Rows follow a
// "--" separator and look like " DE mov,mp4,m4a  QuickTime / MOV".
func parseFormats(out []byte) []string {
	seen := map[string]bool{}
	var names []string
	for _, fields := range tableRows(out) {
		if len(fields) < 2 {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// parseCodecs reads the table printed by `ffmpeg -codecs`. Rows follow a
// "-------" separator and look like " DEV.LS h264  H.264 / AVC".
func parseCodecs(out []byte) []string {
	var names []string
	for _, fields := range tableRows(out) {
		if len(fields) >= 2 {
			names = append(names, fields[1])
		}
	}
	return names
}

func tableRows(out []byte) [][]string {
	var rows [][]string
	inTable := false
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !inTable {
			inTable = strings.Trim(line, "-") == ""
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	return rows
}
