package workflow

import (
	"context"
	"time"

	"docflow/internal/config"
	"docflow/internal/model"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ActivityName is the registered name of the analysis activity.
const ActivityName = "AnalyzeDocument"

// Analyzer runs the extraction and analysis stage for one stored object.
type Analyzer interface {
	Handle(ctx context.Context, ev model.AnalysisEvent, requestID string) (model.Response, error)
}

// Activities hosts the analysis stage as a Temporal activity.
type Activities struct {
	Stage Analyzer
}

// AnalyzeDocument calls the stage with "<workflowID>/<activityID>" as the
// request id recorded in the result.
func (a *Activities) AnalyzeDocument(ctx context.Context, ev model.AnalysisEvent) (model.Response, error) {
	info := activity.GetInfo(ctx)
	return a.Stage.Handle(ctx, ev, info.WorkflowExecution.ID+"/"+info.ActivityID)
}

// Options controls how the workflow schedules the analysis activity.
type Options struct {
	ActivityTimeout time.Duration
	MaxAttempts     int32
}

// OptionsFromConfig converts the workflow settings, substituting safe
// minimums for unset values.
func OptionsFromConfig(cfg config.TemporalConfig) Options {
	o := Options{
		ActivityTimeout: time.Duration(cfg.ActivityTimeoutSec) * time.Second,
		MaxAttempts:     int32(cfg.MaxAttempts),
	}
	if o.ActivityTimeout <= 0 {
		o.ActivityTimeout = 5 * time.Minute
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	return o
}

// Pipeline is the document-processing workflow definition.
type Pipeline struct {
	Options Options
}

// ProcessDocument runs the analysis activity once against the stored object
// named by in and returns its response.
func (p Pipeline) ProcessDocument(ctx workflow.Context, in model.WorkflowInput) (model.Response, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: p.Options.ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: p.Options.MaxAttempts,
		},
	})

	workflow.GetLogger(ctx).Info("processing document", "bucket", in.S3Bucket, "key", in.S3Key)

	var resp model.Response
	err := workflow.ExecuteActivity(ctx, ActivityName, model.AnalysisEvent{
		S3Bucket: in.S3Bucket,
		S3Key:    in.S3Key,
	}).Get(ctx, &resp)
	if err != nil {
		return model.Response{}, err
	}
	return resp, nil
}

// Registrar is satisfied by worker.Worker and the SDK test environment.
type Registrar interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}

// Register installs the workflow under workflowName and the analysis
// activity under ActivityName.
func Register(r Registrar, workflowName string, p Pipeline, acts *Activities) {
	r.RegisterWorkflowWithOptions(p.ProcessDocument, workflow.RegisterOptions{Name: workflowName})
	r.RegisterActivityWithOptions(acts.AnalyzeDocument, activity.RegisterOptions{Name: ActivityName})
}
