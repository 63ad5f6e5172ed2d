package mocks

import (
	"context"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
	"github.com/stretchr/testify/mock"
)

type JobStoreMock struct {
	mock.Mock
}

type JobStoreMock_Expecter struct {
	mock *mock.Mock
}

func NewJobStoreMock(t testingT) *JobStoreMock {
	m := &JobStoreMock{}
	register(&m.Mock, t)
	return m
}

func (_m *JobStoreMock) EXPECT() *JobStoreMock_Expecter {
	return &JobStoreMock_Expecter{mock: &_m.Mock}
}

func (_m *JobStoreMock) Create(ctx context.Context, job *domain.TranscodeJob) error {
	return _m.Called(ctx, job).Error(0)
}

func (_e *JobStoreMock_Expecter) Create(ctx, job interface{}) *mock.Call {
	return _e.mock.On("Create", ctx, job)
}

func (_m *JobStoreMock) GetByID(ctx context.Context, id string, userID int64) (*domain.TranscodeJob, error) {
	ret := _m.Called(ctx, id, userID)
	return get[*domain.TranscodeJob](ret, 0), ret.Error(1)
}

func (_e *JobStoreMock_Expecter) GetByID(ctx, id, userID interface{}) *mock.Call {
	return _e.mock.On("GetByID", ctx, id, userID)
}

func (_m *JobStoreMock) FindInFlight(ctx context.Context, videoID string, format domain.Format, userID int64) (*domain.TranscodeJob, error) {
	ret := _m.Called(ctx, videoID, format, userID)
	return get[*domain.TranscodeJob](ret, 0), ret.Error(1)
}

func (_e *JobStoreMock_Expecter) FindInFlight(ctx, videoID, format, userID interface{}) *mock.Call {
	return _e.mock.On("FindInFlight", ctx, videoID, format, userID)
}

func (_m *JobStoreMock) ListByVideo(ctx context.Context, videoID string, userID int64) ([]*domain.TranscodeJob, error) {
	ret := _m.Called(ctx, videoID, userID)
	return get[[]*domain.TranscodeJob](ret, 0), ret.Error(1)
}

func (_e *JobStoreMock_Expecter) ListByVideo(ctx, videoID, userID interface{}) *mock.Call {
	return _e.mock.On("ListByVideo", ctx, videoID, userID)
}

func (_m *JobStoreMock) ListByUser(ctx context.Context, userID int64) ([]*domain.TranscodeJob, error) {
	ret := _m.Called(ctx, userID)
	return get[[]*domain.TranscodeJob](ret, 0), ret.Error(1)
}

func (_e *JobStoreMock_Expecter) ListByUser(ctx, userID interface{}) *mock.Call {
	return _e.mock.On("ListByUser", ctx, userID)
}

func (_m *JobStoreMock) FindCompletedByFilename(ctx context.Context, filename string, userID int64) (*domain.TranscodeJob, error) {
	ret := _m.Called(ctx, filename, userID)
	return get[*domain.TranscodeJob](ret, 0), ret.Error(1)
}

func (_e *JobStoreMock_Expecter) FindCompletedByFilename(ctx, filename, userID interface{}) *mock.Call {
	return _e.mock.On("FindCompletedByFilename", ctx, filename, userID)
}

func (_m *JobStoreMock) UpdateStatus(ctx context.Context, update domain.JobStatusUpdate) error {
	return _m.Called(ctx, update).Error(0)
}

func (_e *JobStoreMock_Expecter) UpdateStatus(ctx, update interface{}) *mock.Call {
	return _e.mock.On("UpdateStatus", ctx, update)
}

func (_m *JobStoreMock) FailInFlight(ctx context.Context, message string) (int64, error) {
	ret := _m.Called(ctx, message)
	return get[int64](ret, 0), ret.Error(1)
}

func (_e *JobStoreMock_Expecter) FailInFlight(ctx, message interface{}) *mock.Call {
	return _e.mock.On("FailInFlight", ctx, message)
}

func (_m *JobStoreMock) Delete(ctx context.Context, id string, userID int64) error {
	return _m.Called(ctx, id, userID).Error(0)
}

func (_e *JobStoreMock_Expecter) Delete(ctx, id, userID interface{}) *mock.Call {
	return _e.mock.On("Delete", ctx, id, userID)
}

var _ port.JobStore = (*JobStoreMock)(nil)
