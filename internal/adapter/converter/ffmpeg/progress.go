package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// scanProgress reads `-progress pipe:1` key=value output and reports the
// percentage of total done, capped at 99 until the process exits. When
// total is unknown no percentages are reported. It reads r to EOF.
func scanProgress(r io.Reader, total time.Duration, report func(int)) {
	scanner := bufio.NewScanner(r)
	last := 0
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || total <= 0 {
			continue
		}
		// out_time_ms is reported in microseconds, like out_time_us.
		if key != "out_time_us" && key != "out_time_ms" {
			continue
		}
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			continue
		}
		percent := int(float64(us) / float64(total.Microseconds()) * 100)
		if percent > 99 {
			percent = 99
		}
		if percent > last {
			last = percent
			report(percent)
		}
	}
	_, _ = io.Copy(io.Discard, r)
}

const stderrTailSize = 4 << 10

// tailBuffer keeps the last stderrTailSize bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - stderrTailSize; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
