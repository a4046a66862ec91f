package mocks

import (
	"context"

	"docflow/internal/model"
	"docflow/internal/workflow"

	"github.com/stretchr/testify/mock"
)

type MockTrigger struct {
	mock.Mock
}

func (m *MockTrigger) Start(ctx context.Context, workflowName string, in model.WorkflowInput) (workflow.Execution, error) {
	args := m.Called(ctx, workflowName, in)
	return args.Get(0).(workflow.Execution), args.Error(1)
}
