package port

import (
	"context"
	"time"

	"github.com/bairigao/video-transcoding/internal/domain"
)

// Transcoder starts conversion processes. Start returns once the process is
// running; its outcome arrives later on the returned Handle.
type Transcoder interface {
	Start(ctx context.Context, job *domain.TranscodeJob) (*Handle, error)
	DescribeCapabilities(ctx context.Context) (*Capabilities, error)
}

// Result is the single terminal event of a conversion. Err is nil on success.
type Result struct {
	Err        error
	FinishedAt time.Time
}

// Handle observes one running conversion. Done delivers exactly one Result
// and Progress is closed before that happens.
type Handle struct {
	progress <-chan int
	done     <-chan Result
}

func NewHandle(progress <-chan int, done <-chan Result) *Handle {
	return &Handle{progress: progress, done: done}
}

func (h *Handle) Progress() <-chan int {
	return h.progress
}

func (h *Handle) Done() <-chan Result {
	return h.done
}

type Capabilities struct {
	Version string
	Formats []string
	Codecs  []string
}
