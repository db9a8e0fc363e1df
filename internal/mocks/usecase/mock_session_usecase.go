package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionUsecase is a mock implementation of usecase.SessionUsecase.
type MockSessionUsecase struct {
	mock.Mock
}

var _ usecase.SessionUsecase = (*MockSessionUsecase)(nil)

// NewMockSessionUsecase creates a mock that asserts its expectations when the test ends.
func NewMockSessionUsecase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionUsecase {
	m := &MockSessionUsecase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionUsecase) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.SessionInfo, error) {
	ret := m.Called(ctx, userID)

	out, _ := ret.Get(0).([]*entity.SessionInfo)

	return out, ret.Error(1)
}

func (m *MockSessionUsecase) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	ret := m.Called(ctx, userID)

	return ret.Get(0).(int64), ret.Error(1)
}
