package mocks

import (
	"context"

	"github.com/bairigao/video-transcoding/internal/domain"
	"github.com/bairigao/video-transcoding/internal/port"
	"github.com/stretchr/testify/mock"
)

type UserStoreMock struct {
	mock.Mock
}

type UserStoreMock_Expecter struct {
	mock *mock.Mock
}

func NewUserStoreMock(t testingT) *UserStoreMock {
	m := &UserStoreMock{}
	register(&m.Mock, t)
	return m
}

func (_m *UserStoreMock) EXPECT() *UserStoreMock_Expecter {
	return &UserStoreMock_Expecter{mock: &_m.Mock}
}

func (_m *UserStoreMock) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	ret := _m.Called(ctx, username, passwordHash)
	return get[*domain.User](ret, 0), ret.Error(1)
}

func (_e *UserStoreMock_Expecter) CreateUser(ctx, username, passwordHash interface{}) *mock.Call {
	return _e.mock.On("CreateUser", ctx, username, passwordHash)
}

func (_m *UserStoreMock) GetUser(ctx context.Context, username string) (*domain.User, error) {
	ret := _m.Called(ctx, username)
	return get[*domain.User](ret, 0), ret.Error(1)
}

func (_e *UserStoreMock_Expecter) GetUser(ctx, username interface{}) *mock.Call {
	return _e.mock.On("GetUser", ctx, username)
}

func (_m *UserStoreMock) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	ret := _m.Called(ctx, id)
	return get[*domain.User](ret, 0), ret.Error(1)
}

func (_e *UserStoreMock_Expecter) GetUserByID(ctx, id interface{}) *mock.Call {
	return _e.mock.On("GetUserByID", ctx, id)
}

func (_m *UserStoreMock) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return _m.Called(ctx, id, passwordHash).Error(0)
}

func (_e *UserStoreMock_Expecter) UpdatePassword(ctx, id, passwordHash interface{}) *mock.Call {
	return _e.mock.On("UpdatePassword", ctx, id, passwordHash)
}

var _ port.UserStore = (*UserStoreMock)(nil)
