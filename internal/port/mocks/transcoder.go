package mocks

import (
	"context"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
	"github.com/stretchr/testify/mock"
)

type TranscoderMock struct {
	mock.Mock
}

type TranscoderMock_Expecter struct {
	mock *mock.Mock
}

func NewTranscoderMock(t testingT) *TranscoderMock {
	m := &TranscoderMock{}
	register(&m.Mock, t)
	return m
}

func (_m *TranscoderMock) EXPECT() *TranscoderMock_Expecter {
	return &TranscoderMock_Expecter{mock: &_m.Mock}
}

func (_m *TranscoderMock) Start(ctx context.Context, job *domain.TranscodeJob) (*port.Handle, error) {
	ret := _m.Called(ctx, job)
	return get[*port.Handle](ret, 0), ret.Error(1)
}

func (_e *TranscoderMock_Expecter) Start(ctx, job interface{}) *mock.Call {
	return _e.mock.On("Start", ctx, job)
}

func (_m *TranscoderMock) DescribeCapabilities(ctx context.Context) (*port.Capabilities, error) {
	ret := _m.Called(ctx)
	return get[*port.Capabilities](ret, 0), ret.Error(1)
}

func (_e *TranscoderMock_Expecter) DescribeCapabilities(ctx interface{}) *mock.Call {
	return _e.mock.On("DescribeCapabilities", ctx)
}

var _ port.Transcoder = (*TranscoderMock)(nil)
