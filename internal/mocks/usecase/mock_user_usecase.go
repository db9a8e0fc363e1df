// Package usecase holds testify mocks of the use case interfaces.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserUsecase is a mock implementation of usecase.UserUsecase.
type MockUserUsecase struct {
	mock.Mock
}

var _ usecase.UserUsecase = (*MockUserUsecase)(nil)

// NewMockUserUsecase creates a mock that asserts its expectations when the test ends.
func NewMockUserUsecase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserUsecase {
	m := &MockUserUsecase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserUsecase) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	ret := m.Called(ctx, input)

	out, _ := ret.Get(0).(*usecase.RegisterOutput)

	return out, ret.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	ret := m.Called(ctx, input)

	out, _ := ret.Get(0).(*usecase.LoginOutput)

	return out, ret.Error(1)
}

func (m *MockUserUsecase) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	ret := m.Called(ctx, input)

	out, _ := ret.Get(0).(*usecase.RefreshTokenOutput)

	return out, ret.Error(1)
}

func (m *MockUserUsecase) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockUserUsecase) Authenticate(ctx context.Context, accessToken string) (*entity.Identity, error) {
	ret := m.Called(ctx, accessToken)

	out, _ := ret.Get(0).(*entity.Identity)

	return out, ret.Error(1)
}

func (m *MockUserUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicProfile, error) {
	ret := m.Called(ctx, userID)

	out, _ := ret.Get(0).(*entity.PublicProfile)

	return out, ret.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, input *usecase.ListUsersInput) ([]*entity.PublicProfile, error) {
	ret := m.Called(ctx, input)

	out, _ := ret.Get(0).([]*entity.PublicProfile)

	return out, ret.Error(1)
}
