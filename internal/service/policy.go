package service

import (
	"encoding/json"
	"strings"

	"docflow/internal/model"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorPolicy decides what a stage does with a failure.
type ErrorPolicy int

const (
	// Report turns the failure into a 500 response with the error text.
	Report ErrorPolicy = iota
	// Propagate returns the failure to the host (HTTP error handler or
	// Temporal activity), which applies its own retry and alerting.
	Propagate
)

func (p ErrorPolicy) String() string {
	if p == Propagate {
		return "propagate"
	}
	return "report"
}

// ParseErrorPolicy accepts "report" or "propagate", case-insensitively.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "report":
		return Report, nil
	case "propagate":
		return Propagate, nil
	default:
		return Report, eris.Errorf("unknown error policy %q", s)
	}
}

var tracer = otel.Tracer("docflow/internal/service")

// failureBody is the 500 body both stages report.
type failureBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// respond renders body as the JSON string of a stage response.
func respond(status int, body any) (model.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return model.Response{}, eris.Wrap(err, "encode response body")
	}
	return model.Response{StatusCode: status, Body: string(b)}, nil
}

// settle applies policy to a failed stage run.
func settle(policy ErrorPolicy, span trace.Span, message string, err error) (model.Response, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if policy == Propagate {
		return model.Response{}, err
	}
	return respond(500, failureBody{Message: message, Error: err.Error()})
}
