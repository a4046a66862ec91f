package mocks

import (
	"context"

	"docflow/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockIntakeStage struct {
	mock.Mock
}

func (m *MockIntakeStage) Handle(ctx context.Context, ev model.Event) (model.Response, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(model.Response), args.Error(1)
}

type MockAnalysisStage struct {
	mock.Mock
}

func (m *MockAnalysisStage) Handle(ctx context.Context, ev model.AnalysisEvent, requestID string) (model.Response, error) {
	args := m.Called(ctx, ev, requestID)
	return args.Get(0).(model.Response), args.Error(1)
}
