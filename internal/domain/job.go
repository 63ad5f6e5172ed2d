package domain

import (
	"slices"
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Format is a target container name such as "mp4". Always lower case.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatAVI  Format = "avi"
	FormatMOV  Format = "mov"
	FormatWebM Format = "webm"
)

var DefaultFormats = []Format{FormatMP4, FormatAVI, FormatMOV, FormatWebM}

// ParseFormat lower-cases raw and checks it against allowed.
func ParseFormat(raw string, allowed []Format) (Format, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", NewValidationError("format", "format is required")
	}
	f := Format(strings.ToLower(raw))
	if !slices.Contains(allowed, f) {
		return "", NewValidationError("format", "Unsupported format. Allowed: "+JoinFormats(allowed))
	}
	return f, nil
}

func JoinFormats(formats []Format) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// TranscodeJob is one request to convert one source video to one format.
type TranscodeJob struct {
	ID             string
	VideoID        string
	UserID         int64
	InputPath      string
	OutputPath     string
	OutputFilename string
	Format         Format
	Status         JobStatus
	ErrorMessage   string
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

func (j *TranscodeJob) IsInFlight() bool {
	return j.Status == JobStatusProcessing
}

// JobStatusUpdate is the single terminal write applied to a processing job.
// ErrorMessage is only meaningful for failed and CompletedAt for completed.
type JobStatusUpdate struct {
	ID           string
	Status       JobStatus
	ErrorMessage *string
	CompletedAt  *time.Time
}

func (u JobStatusUpdate) Validate() error {
	if u.ID == "" {
		return NewValidationError("id", "job id is required")
	}
	if u.Status == "" {
		return NewValidationError("status", "status is required")
	}
	if !u.Status.Valid() {
		return NewValidationError("status", "unknown status "+string(u.Status))
	}
	return nil
}

// Completed builds the update for a successful conversion.
func Completed(id string, at time.Time) JobStatusUpdate {
	at = at.UTC()
	return JobStatusUpdate{ID: id, Status: JobStatusCompleted, CompletedAt: &at}
}

// Failed builds the update for a conversion that did not produce output.
func Failed(id, message string) JobStatusUpdate {
	return JobStatusUpdate{ID: id, Status: JobStatusFailed, ErrorMessage: &message}
}

// DeletedVideoName is shown in listings when the source video is gone.
const DeletedVideoName = "Deleted Video"

// JobListing is a job plus the display name of its source video.
type JobListing struct {
	TranscodeJob
	OriginalVideoName string
	OriginalFilename  string
}
