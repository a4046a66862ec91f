// Package workflow starts and hosts the durable document-processing
// workflow on Temporal.
package workflow

import (
	"context"

	"docflow/internal/config"
	"docflow/internal/model"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

// Execution identifies a started workflow run.
type Execution struct {
	WorkflowID string
	RunID      string
}

// ARN renders the execution as a single opaque identifier for responses.
func (e Execution) ARN() string {
	return e.WorkflowID + "/" + e.RunID
}

// Trigger starts a named workflow asynchronously. Start returns once the
// engine has accepted the run; it never waits on the outcome.
type Trigger interface {
	Start(ctx context.Context, workflowName string, in model.WorkflowInput) (Execution, error)
}

// starter is the slice of client.Client the trigger needs.
type starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalTrigger implements Trigger on a Temporal client.
type TemporalTrigger struct {
	client    starter
	taskQueue string
	newID     func() string
}

func NewTemporalTrigger(c client.Client, taskQueue string) *TemporalTrigger {
	return &TemporalTrigger{
		client:    c,
		taskQueue: taskQueue,
		newID:     func() string { return "intake-" + uuid.NewString() },
	}
}

func (t *TemporalTrigger) Start(ctx context.Context, workflowName string, in model.WorkflowInput) (Execution, error) {
	if workflowName == "" {
		return Execution{}, eris.New("workflow: workflow name is required")
	}

	run, err := t.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        t.newID(),
		TaskQueue: t.taskQueue,
	}, workflowName, in)
	if err != nil {
		return Execution{}, eris.Wrapf(err, "workflow: start %s", workflowName)
	}

	return Execution{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

// Dial connects to the Temporal frontend described by cfg.
func Dial(cfg config.TemporalConfig, logger *zap.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    NewLogger(logger),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "workflow: dial %s", cfg.HostPort)
	}
	return c, nil
}
