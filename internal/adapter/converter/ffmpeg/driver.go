package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains null byte")
)

const probeTimeout = 15 * time.Second

type Options struct {
	FFmpegPath  string
	FFprobePath string
}

// Driver runs ffmpeg as a child process per job.
type Driver struct {
	ffmpegPath  string
	ffprobePath string
	now         func() time.Time
}

func New(opts Options) *Driver {
	d := &Driver{
		ffmpegPath:  opts.FFmpegPath,
		ffprobePath: opts.FFprobePath,
		now:         time.Now,
	}
	if d.ffmpegPath == "" {
		d.ffmpegPath = "ffmpeg"
	}
	if d.ffprobePath == "" {
		d.ffprobePath = "ffprobe"
	}
	return d
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return ErrInvalidPath
	}
	return nil
}

// Start spawns ffmpeg for job and returns once the process is running.
// The process is not bound to ctx: it keeps running after the request that
// started it has returned, and nothing cancels it.
func (d *Driver) Start(ctx context.Context, job *domain.TranscodeJob) (*port.Handle, error) {
	if err := validatePath(job.InputPath); err != nil {
		return nil, fmt.Errorf("input path: %w", err)
	}
	if err := validatePath(job.OutputPath); err != nil {
		return nil, fmt.Errorf("output path: %w", err)
	}

	in, err := os.Open(job.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	_ = in.Close()

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	total, err := d.probeDuration(ctx, job.InputPath)
	if err != nil {
		logger.Debug.Printf("job %s: duration probe failed, progress disabled: %v", job.ID, err)
	}

	cmd := exec.Command(d.ffmpegPath, buildArgs(job.InputPath, job.OutputPath, job.Format)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr := &tailBuffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", d.ffmpegPath, err)
	}
	logger.Info.Printf("job %s: ffmpeg started (pid %d) %s -> %s", job.ID, cmd.Process.Pid,
		logger.SanitizeForLog(filepath.Base(job.InputPath)), logger.SanitizeForLog(job.OutputFilename))

	progress := make(chan int, 16)
	done := make(chan port.Result, 1)

	go func() {
		defer close(done)

		scanProgress(stdout, total, func(p int) {
			select {
			case progress <- p:
			default:
			}
		})

		waitErr := cmd.Wait()
		res := port.Result{FinishedAt: d.now().UTC()}
		if waitErr != nil {
			res.Err = fmt.Errorf("ffmpeg failed: %w: %s", waitErr, stderr.String())
		} else {
			select {
			case progress <- 100:
			default:
			}
		}
		close(progress)
		done <- res
	}()

	return port.NewHandle(progress, done), nil
}

// probeDuration asks ffprobe for the container duration.
func (d *Driver) probeDuration(ctx context.Context, inputPath string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, d.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nokey=1:noprint_wrappers=1",
		inputPath,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	value := strings.TrimSpace(string(out))
	if value == "" || value == "N/A" {
		return 0, errors.New("duration missing")
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

var _ port.Transcoder = (*Driver)(nil)
