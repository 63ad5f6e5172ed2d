package http

import (
	"time"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/service"
)

// timeLayout is RFC 3339 with millisecond precision, always UTC.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

type jobResponse struct {
	ID                string  `json:"id"`
	VideoID           string  `json:"videoId"`
	UserID            int64   `json:"userId"`
	OutputFilename    string  `json:"outputFilename"`
	Format            string  `json:"format"`
	Status            string  `json:"status"`
	ErrorMessage      *string `json:"errorMessage"`
	CreatedAt         string  `json:"createdAt"`
	CompletedAt       *string `json:"completedAt"`
	OriginalVideoName string  `json:"originalVideoName,omitempty"`
	OriginalFilename  string  `json:"originalFilename,omitempty"`
}

func toJobResponse(j *domain.TranscodeJob) jobResponse {
	out := jobResponse{
		ID:             j.ID,
		VideoID:        j.VideoID,
		UserID:         j.UserID,
		OutputFilename: j.OutputFilename,
		Format:         string(j.Format),
		Status:         string(j.Status),
		CreatedAt:      formatTime(j.CreatedAt),
		CompletedAt:    formatTimePtr(j.CompletedAt),
	}
	if j.ErrorMessage != "" {
		msg := j.ErrorMessage
		out.ErrorMessage = &msg
	}
	return out
}

func toJobListing(l *domain.JobListing) jobResponse {
	out := toJobResponse(&l.TranscodeJob)
	out.OriginalVideoName = l.OriginalVideoName
	out.OriginalFilename = l.OriginalFilename
	return out
}

type jobStatusResponse struct {
	jobResponse
	Progress *int `json:"progress,omitempty"`
}

func toJobStatus(p *service.JobProgress) jobStatusResponse {
	out := jobStatusResponse{jobResponse: toJobResponse(p.TranscodeJob)}
	if p.HasProgress {
		pct := p.Progress
		out.Progress = &pct
	}
	return out
}

type videoResponse struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Size         int64  `json:"size"`
	UploadDate   string `json:"uploadDate"`
	MimeType     string `json:"mimetype"`
}

func toVideoResponse(v *domain.Video) videoResponse {
	return videoResponse{
		ID:           v.ID,
		OriginalName: v.OriginalName,
		Filename:     v.Filename,
		UserID:       v.UserID,
		Username:     v.Username,
		Size:         v.Size,
		UploadDate:   formatTime(v.UploadedAt),
		MimeType:     v.MimeType,
	}
}

type healthResponse struct {
	Status              string   `json:"status"`
	FFmpegAvailable     bool     `json:"ffmpegAvailable"`
	FFmpegVersion       string   `json:"ffmpegVersion,omitempty"`
	SupportedFormats    int      `json:"supportedFormats"`
	SupportedCodecs     int      `json:"supportedCodecs"`
	AllowedFormats      []string `json:"allowedFormats"`
	UploadsDirExists    bool     `json:"uploadsDirExists"`
	TranscodedDirExists bool     `json:"transcodedDirExists"`
	StoreReachable      bool     `json:"storeReachable"`
	Error               string   `json:"error,omitempty"`
}

func toHealthResponse(r *service.HealthReport) healthResponse {
	status := "unhealthy"
	if r.Healthy {
		status = "healthy"
	}
	formats := make([]string, len(r.AllowedFormats))
	for i, f := range r.AllowedFormats {
		formats[i] = string(f)
	}
	return healthResponse{
		Status:              status,
		FFmpegAvailable:     r.FFmpegAvailable,
		FFmpegVersion:       r.FFmpegVersion,
		SupportedFormats:    r.FormatCount,
		SupportedCodecs:     r.CodecCount,
		AllowedFormats:      formats,
		UploadsDirExists:    r.UploadsDirExists,
		TranscodedDirExists: r.TranscodedDirExists,
		StoreReachable:      r.StoreReachable,
		Error:               r.Error,
	}
}
