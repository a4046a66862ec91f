package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"docflow/internal/model"
	"docflow/internal/storage"
	"docflow/internal/vault"
	"docflow/internal/workflow"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Variant selects the intake flavour. Both share the same shape:
// normalize, extract fields, store, trigger, respond.
type Variant int

const (
	// Uploads stores the normalized payload itself as JSON under uploads/.
	Uploads Variant = iota
	// Contracts stores an attachment carried by the payload under contracts/,
	// after loading the webhook credentials from the vault.
	Contracts
)

func (v Variant) String() string {
	if v == Contracts {
		return "contracts"
	}
	return "uploads"
}

const (
	uploadsPrefix      = "uploads/"
	contractsPrefix    = "contracts/"
	defaultUploadName  = "anon"
	defaultContentType = "application/pdf"
)

// IntakeStage handles one inbound event.
type IntakeStage interface {
	Handle(ctx context.Context, ev model.Event) (model.Response, error)
}

// IntakeConfig carries the values the intake stage reads once at construction.
type IntakeConfig struct {
	Variant      Variant
	Bucket       string
	WorkflowName string
	SecretID     string
	Policy       ErrorPolicy
}

type intakeService struct {
	cfg     IntakeConfig
	store   storage.Storage
	vault   vault.Vault
	trigger workflow.Trigger
	log     *zap.Logger
	now     func() time.Time
}

// NewIntakeService wires the intake stage. The vault is only consulted by the
// Contracts variant and may be nil for Uploads.
func NewIntakeService(cfg IntakeConfig, store storage.Storage, v vault.Vault, trigger workflow.Trigger, log *zap.Logger) IntakeStage {
	return &intakeService{
		cfg:     cfg,
		store:   store,
		vault:   v,
		trigger: trigger,
		log:     log.With(zap.String("stage", "intake"), zap.Stringer("variant", cfg.Variant)),
		now:     time.Now,
	}
}

type intakeBody struct {
	Message      string `json:"message"`
	Key          string `json:"key"`
	ExecutionARN string `json:"execution_arn"`
}

// document is what the variant decided to store.
type document struct {
	key         string
	data        []byte
	contentType string
}

func (s *intakeService) Handle(ctx context.Context, ev model.Event) (model.Response, error) {
	ctx, span := tracer.Start(ctx, "intake."+s.cfg.Variant.String())
	defer span.End()

	payload := Normalize(ev)

	doc, err := s.prepare(ctx, payload)
	if err != nil {
		s.log.Error("Error processing webhook", zap.Error(err))
		return settle(s.cfg.Policy, span, "Error processing webhook", err)
	}
	span.SetAttributes(attribute.String("docflow.key", doc.key))

	ref := model.ObjectRef{Bucket: s.cfg.Bucket, Key: doc.key}
	if _, err := s.store.Put(ctx, ref, bytes.NewReader(doc.data), storage.PutObjectOptions{
		Size:        int64(len(doc.data)),
		ContentType: doc.contentType,
	}); err != nil {
		err = eris.Wrapf(err, "store %s", doc.key)
		s.log.Error("Error processing webhook", zap.Error(err))
		return settle(s.cfg.Policy, span, "Error processing webhook", err)
	}
	s.log.Info("stored document", zap.String("bucket", ref.Bucket), zap.String("key", ref.Key), zap.Int("size", len(doc.data)))

	exec, err := s.trigger.Start(ctx, s.cfg.WorkflowName, model.WorkflowInput{
		S3Bucket:    ref.Bucket,
		S3Key:       ref.Key,
		WebhookData: payload,
	})
	if err != nil {
		s.log.Error("Error processing webhook", zap.String("key", ref.Key), zap.Error(err))
		return settle(s.cfg.Policy, span, "Error processing webhook", err)
	}
	s.log.Info("started workflow", zap.String("execution_arn", exec.ARN()))

	msg := "accepted"
	if s.cfg.Variant == Contracts {
		msg = "Webhook processed successfully"
	}
	return respond(200, intakeBody{Message: msg, Key: ref.Key, ExecutionARN: exec.ARN()})
}

func (s *intakeService) prepare(ctx context.Context, payload any) (document, error) {
	if s.cfg.Variant == Contracts {
		return s.prepareContract(ctx, payload)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return document{}, eris.Wrap(err, "encode payload")
	}
	name := stringField(asMap(payload), "filename")
	if name == "" {
		name = defaultUploadName
	}
	return document{key: uploadsPrefix + name, data: data, contentType: "application/json"}, nil
}

func (s *intakeService) prepareContract(ctx context.Context, payload any) (document, error) {
	if s.vault == nil {
		return document{}, eris.New("credential vault is not configured")
	}
	secret, err := s.vault.GetSecret(ctx, s.cfg.SecretID)
	if err != nil {
		return document{}, eris.Wrap(err, "load webhook credentials")
	}
	// Credentials are loaded and parsed but not yet checked against the request.
	var creds map[string]any
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return document{}, eris.Wrap(err, "parse webhook credentials")
	}

	att := asMap(asMap(payload)["attachment"])

	var data []byte
	switch c := att["content"].(type) {
	case nil:
	case string:
		data = []byte(c)
		if stringField(att, "encoding") == "base64" {
			if data, err = base64.StdEncoding.DecodeString(c); err != nil {
				return document{}, eris.Wrap(err, "decode attachment content")
			}
		}
	default:
		return document{}, eris.Errorf("attachment content must be a string, got %T", c)
	}

	name := stringField(att, "filename")
	if name == "" {
		name = "contract_" + s.now().UTC().Format("20060102150405") + ".pdf"
	}
	contentType := stringField(att, "content_type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return document{key: contractsPrefix + name, data: data, contentType: contentType}, nil
}

// Normalize derives the payload of an inbound event. A string body is decoded
// as JSON, falling back to {"body": raw} when it is not valid JSON. A mapping
// body passes through. Without a usable body the whole event is the payload.
func Normalize(ev model.Event) any {
	switch b := ev["body"].(type) {
	case nil:
		return map[string]any(ev)
	case string:
		if b == "" {
			return map[string]any(ev)
		}
		var payload any
		if err := json.Unmarshal([]byte(b), &payload); err != nil {
			return map[string]any{"body": b}
		}
		return payload
	case map[string]any:
		if len(b) == 0 {
			return map[string]any(ev)
		}
		return b
	default:
		return map[string]any{"body": b}
	}
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case model.Event:
		return m
	}
	return nil
}

func stringField(m map[string]any, name string) string {
	s, _ := m[name].(string)
	return s
}
