package model

// Event is an inbound trigger payload as delivered by the host: either a raw
// event mapping or an HTTP-shaped envelope carrying a "body" field.
// Stages treat it as read-only.
type Event map[string]any

// ObjectRef points at a single object in the document store.
type ObjectRef struct {
	Bucket string `json:"s3_bucket"`
	Key    string `json:"s3_key"`
}

// WorkflowInput is handed once to the durable workflow trigger. After the
// start call returns, the orchestrator owns it.
type WorkflowInput struct {
	S3Bucket    string `json:"s3_bucket"`
	S3Key       string `json:"s3_key"`
	WebhookData any    `json:"webhook_data"`
}

// Ref returns the storage pointer carried by the input.
func (in WorkflowInput) Ref() ObjectRef {
	return ObjectRef{Bucket: in.S3Bucket, Key: in.S3Key}
}

// Response is the HTTP-shaped result every stage returns to its host.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}
