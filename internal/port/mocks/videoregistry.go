package mocks

import (
	"context"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
	"github.com/stretchr/testify/mock"
)

type VideoRegistryMock struct {
	mock.Mock
}

type VideoRegistryMock_Expecter struct {
	mock *mock.Mock
}

func NewVideoRegistryMock(t testingT) *VideoRegistryMock {
	m := &VideoRegistryMock{}
	register(&m.Mock, t)
	return m
}

func (_m *VideoRegistryMock) EXPECT() *VideoRegistryMock_Expecter {
	return &VideoRegistryMock_Expecter{mock: &_m.Mock}
}

func (_m *VideoRegistryMock) Create(ctx context.Context, video *domain.Video) error {
	return _m.Called(ctx, video).Error(0)
}

func (_e *VideoRegistryMock_Expecter) Create(ctx, video interface{}) *mock.Call {
	return _e.mock.On("Create", ctx, video)
}

func (_m *VideoRegistryMock) FindByID(ctx context.Context, id string, userID int64) (*domain.Video, error) {
	ret := _m.Called(ctx, id, userID)
	return get[*domain.Video](ret, 0), ret.Error(1)
}

func (_e *VideoRegistryMock_Expecter) FindByID(ctx, id, userID interface{}) *mock.Call {
	return _e.mock.On("FindByID", ctx, id, userID)
}

func (_m *VideoRegistryMock) FindByFilename(ctx context.Context, filename string, userID int64) (*domain.Video, error) {
	ret := _m.Called(ctx, filename, userID)
	return get[*domain.Video](ret, 0), ret.Error(1)
}

func (_e *VideoRegistryMock_Expecter) FindByFilename(ctx, filename, userID interface{}) *mock.Call {
	return _e.mock.On("FindByFilename", ctx, filename, userID)
}

func (_m *VideoRegistryMock) ListByUser(ctx context.Context, userID int64) ([]*domain.Video, error) {
	ret := _m.Called(ctx, userID)
	return get[[]*domain.Video](ret, 0), ret.Error(1)
}

func (_e *VideoRegistryMock_Expecter) ListByUser(ctx, userID interface{}) *mock.Call {
	return _e.mock.On("ListByUser", ctx, userID)
}

func (_m *VideoRegistryMock) Delete(ctx context.Context, id string, userID int64) error {
	return _m.Called(ctx, id, userID).Error(0)
}

func (_e *VideoRegistryMock_Expecter) Delete(ctx, id, userID interface{}) *mock.Call {
	return _e.mock.On("Delete", ctx, id, userID)
}

var _ port.VideoRegistry = (*VideoRegistryMock)(nil)
