package workflow

import (
	"context"
	"errors"
	"testing"

	"docflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestExecution_ARN(t *testing.T) {
	assert.Equal(t, "intake-1/run-9", Execution{WorkflowID: "intake-1", RunID: "run-9"}.ARN())
}

func TestTemporalTrigger_Start(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("intake-fixed")
	run.On("GetRunID").Return("run-1")

	in := model.WorkflowInput{S3Bucket: "docs", S3Key: "contracts/a.pdf", WebhookData: map[string]any{"x": 1.0}}
	opts := client.StartWorkflowOptions{ID: "intake-fixed", TaskQueue: "docflow"}
	c.On("ExecuteWorkflow", mock.Anything, opts, "ProcessDocument", in).Return(run, nil).Once()

	tr := NewTemporalTrigger(c, "docflow")
	tr.newID = func() string { return "intake-fixed" }

	exec, err := tr.Start(context.Background(), "ProcessDocument", in)

	require.NoError(t, err)
	assert.Equal(t, Execution{WorkflowID: "intake-fixed", RunID: "run-1"}, exec)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestTemporalTrigger_StartError(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, "Missing", mock.Anything).
		Return(nil, errors.New("workflow type not found"))

	tr := NewTemporalTrigger(c, "docflow")
	_, err := tr.Start(context.Background(), "Missing", model.WorkflowInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow: start Missing")
	assert.Contains(t, err.Error(), "workflow type not found")
}

func TestTemporalTrigger_StartRequiresName(t *testing.T) {
	c := &mocks.Client{}
	tr := NewTemporalTrigger(c, "docflow")

	_, err := tr.Start(context.Background(), "", model.WorkflowInput{})

	assert.Error(t, err)
	c.AssertNotCalled(t, "ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTemporalTrigger_IDsAreUnique(t *testing.T) {
	tr := NewTemporalTrigger(&mocks.Client{}, "q")
	a, b := tr.newID(), tr.newID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^intake-[0-9a-f-]{36}$`, a)
}

func zapTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}
