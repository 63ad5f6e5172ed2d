package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bairigao/video-transcoding/internal/adapter/http/validation"
	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type TranscodeService interface {
	RequestTranscode(ctx context.Context, videoID, format string, requesterID int64) (*domain.TranscodeJob, error)
	ListJobs(ctx context.Context, requesterID int64) ([]*domain.JobListing, error)
	GetJobStatus(ctx context.Context, jobID string, requesterID int64) (*service.JobProgress, error)
	DeleteJob(ctx context.Context, jobID string, requesterID int64) error
	DownloadTranscoded(ctx context.Context, filename string, requesterID int64) (*domain.TranscodeJob, error)
	Health(ctx context.Context) *service.HealthReport
}

type VideoService interface {
	Upload(ctx context.Context, owner *domain.User, originalName, mimeType string, file *os.File) (*domain.Video, error)
	List(ctx context.Context, ownerID int64) ([]*domain.Video, error)
	Delete(ctx context.Context, id string, ownerID int64) error
	Original(ctx context.Context, filename string, ownerID int64) (*domain.Video, string, error)
}

type Handlers struct {
	transcodes     TranscodeService
	videos         VideoService
	maxUploadBytes int64
}

func NewHandlers(transcodes TranscodeService, videos VideoService, maxUploadBytes int64) *Handlers {
	return &Handlers{
		transcodes:     transcodes,
		videos:         videos,
		maxUploadBytes: maxUploadBytes,
	}
}

// requester reads the user set by RequireAuth. Routes using it are always
// mounted behind that middleware.
func requester(r *http.Request) Requester {
	u, _ := RequesterFrom(r.Context())
	return u
}

type transcodeRequest struct {
	VideoID string `json:"videoId" validate:"required"`
	Format  string `json:"format" validate:"required"`
}

type transcodeResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

func (h *Handlers) Transcode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transcodeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Video ID and format are required")
			return
		}

		job, err := h.transcodes.RequestTranscode(r.Context(), req.VideoID, req.Format, requester(r).ID)
		if err != nil {
			writeServiceError(w, r, err, "Video not found", "Failed to start transcoding")
			return
		}

		writeJSON(w, http.StatusCreated, transcodeResponse{
			Message: "Transcoding started",
			JobID:   job.ID,
			Status:  string(job.Status),
		})
	}
}

func (h *Handlers) ListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := h.transcodes.ListJobs(r.Context(), requester(r).ID)
		if err != nil {
			writeServiceError(w, r, err, "Transcode job not found", "Failed to retrieve jobs")
			return
		}

		jobs := make([]jobResponse, len(listings))
		for i, l := range listings {
			jobs[i] = toJobListing(l)
		}
		writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	}
}

func (h *Handlers) JobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.transcodes.GetJobStatus(r.Context(), chi.URLParam(r, "jobId"), requester(r).ID)
		if err != nil {
			writeServiceError(w, r, err, "Transcode job not found", "Failed to retrieve job status")
			return
		}
		writeJSON(w, http.StatusOK, toJobStatus(status))
	}
}

func (h *Handlers) DeleteJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.transcodes.DeleteJob(r.Context(), chi.URLParam(r, "jobId"), requester(r).ID); err != nil {
			writeServiceError(w, r, err, "Transcode job not found", "Failed to delete transcoded video")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Transcoded video deleted successfully"})
	}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.transcodes.Health(r.Context())
		status := http.StatusOK
		if !report.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, toHealthResponse(report))
	}
}

type uploadResponse struct {
	Message  string        `json:"message"`
	VideoID  string        `json:"videoId"`
	Filename string        `json:"filename"`
	Video    videoResponse `json:"video"`
}

func (h *Handlers) UploadVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > h.maxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "File too large")
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid multipart upload")
			return
		}
		defer r.MultipartForm.RemoveAll() //nolint:errcheck

		file, header, err := r.FormFile("video")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No video file uploaded")
			return
		}
		defer file.Close() //nolint:errcheck

		tmp, err := os.CreateTemp("", "upload-*.tmp")
		if err != nil {
			logger.Error.Printf("upload: create temp file: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to upload video")
			return
		}
		defer os.Remove(tmp.Name()) //nolint:errcheck
		defer tmp.Close()           //nolint:errcheck

		if _, err := io.Copy(tmp, file); err != nil {
			logger.Error.Printf("upload: copy %s: %v", logger.SanitizeForLog(header.Filename), err)
			writeError(w, http.StatusInternalServerError, "Failed to upload video")
			return
		}

		mime, allowed, err := validation.ValidateMagicBytes(tmp)
		if err != nil {
			logger.Error.Printf("upload: sniff %s: %v", logger.SanitizeForLog(header.Filename), err)
			writeError(w, http.StatusInternalServerError, "Failed to upload video")
			return
		}
		if !allowed {
			logger.Warn.Printf("upload rejected: %s detected as %s", logger.SanitizeForLog(header.Filename), mime)
			writeError(w, http.StatusBadRequest, "Invalid file type. Only video files are allowed.")
			return
		}

		u := requester(r)
		owner := &domain.User{ID: u.ID, Username: u.Username}
		video, err := h.videos.Upload(r.Context(), owner, validation.SanitizeFilename(header.Filename), mime, tmp)
		if err != nil {
			writeServiceError(w, r, err, "Video not found", "Failed to upload video")
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{
			Message:  "Video uploaded successfully",
			VideoID:  video.ID,
			Filename: video.Filename,
			Video:    toVideoResponse(video),
		})
	}
}

func (h *Handlers) ListVideos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := h.videos.List(r.Context(), requester(r).ID)
		if err != nil {
			writeServiceError(w, r, err, "Video not found", "Failed to retrieve videos")
			return
		}
		out := make([]videoResponse, len(videos))
		for i, v := range videos {
			out[i] = toVideoResponse(v)
		}
		writeJSON(w, http.StatusOK, map[string]any{"videos": out})
	}
}

func (h *Handlers) DeleteVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.videos.Delete(r.Context(), chi.URLParam(r, "videoId"), requester(r).ID); err != nil {
			writeServiceError(w, r, err, "Video not found", "Failed to delete video")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{
			Message: "Original video deleted successfully. Transcoded videos remain available.",
		})
	}
}

func (h *Handlers) DownloadOriginal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, path, err := h.videos.Original(r.Context(), chi.URLParam(r, "filename"), requester(r).ID)
		if err != nil {
			writeServiceError(w, r, err, "Video not found", "Download failed")
			return
		}
		serveDownload(w, r, path, video.OriginalName)
	}
}

func (h *Handlers) DownloadTranscoded() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.transcodes.DownloadTranscoded(r.Context(), chi.URLParam(r, "filename"), requester(r).ID)
		if err != nil {
			writeServiceError(w, r, err, "Transcoded video not found", "Download failed")
			return
		}
		serveDownload(w, r, job.OutputPath, domain.TranscodedDownloadName(job.Format, job.OutputFilename))
	}
}

func serveDownload(w http.ResponseWriter, r *http.Request, path, name string) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		logger.Error.Printf("download %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "Download failed")
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		logger.Error.Printf("download %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "Download failed")
		return
	}

	w.Header().Set("Content-Disposition", validation.ContentDisposition(name, false))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
