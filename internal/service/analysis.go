package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"docflow/internal/extract"
	"docflow/internal/llm"
	"docflow/internal/model"
	"docflow/internal/storage"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrKeyRequired is reported when an analysis event names no object.
var ErrKeyRequired = eris.New("s3_key is required in the event")

const (
	defaultMaxTokens    = 2000
	defaultPromptChars  = 4000
	defaultPreviewChars = 1000
)

const promptTemplate = `Analyze the following contract and extract key information:

Contract Text:
%s

Please provide:
1. Contract type
2. Key parties involved
3. Important dates
4. Key terms and conditions
5. Obligations and responsibilities
6. Risk factors

Format the response as a structured JSON.`

// AnalysisStage extracts and analyzes one stored document.
type AnalysisStage interface {
	Handle(ctx context.Context, ev model.AnalysisEvent, requestID string) (model.Response, error)
}

// AnalysisConfig carries the values the analysis stage reads once at
// construction. Zero sizes fall back to 2000 tokens, 4000 prompt characters
// and a 1000 character preview.
type AnalysisConfig struct {
	Bucket       string
	Model        string
	MaxTokens    int
	PromptChars  int
	PreviewChars int
	Policy       ErrorPolicy
}

type analysisService struct {
	cfg       AnalysisConfig
	store     storage.Storage
	registry  *extract.Registry
	completer llm.Completer
	log       *zap.Logger
}

// NewAnalysisService wires the analysis stage. Zero sizes in cfg take the defaults.
func NewAnalysisService(cfg AnalysisConfig, store storage.Storage, registry *extract.Registry, completer llm.Completer, log *zap.Logger) AnalysisStage {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.PromptChars <= 0 {
		cfg.PromptChars = defaultPromptChars
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = defaultPreviewChars
	}
	return &analysisService{
		cfg:       cfg,
		store:     store,
		registry:  registry,
		completer: completer,
		log:       log.With(zap.String("stage", "analysis")),
	}
}

type analysisBody struct {
	Message    string `json:"message"`
	ResultKey  string `json:"result_key"`
	TextLength int    `json:"text_length"`
}

func (s *analysisService) Handle(ctx context.Context, ev model.AnalysisEvent, requestID string) (model.Response, error) {
	ctx, span := tracer.Start(ctx, "analysis")
	defer span.End()

	result, resultKey, err := s.run(ctx, ev, requestID)
	if err != nil {
		s.log.Error("Error extracting text", zap.String("key", ev.S3Key), zap.Error(err))
		return settle(s.cfg.Policy, span, "Error extracting text", err)
	}
	span.SetAttributes(
		attribute.String("docflow.result_key", resultKey),
		attribute.Int("docflow.text_length", result.TextLength),
	)

	return respond(200, analysisBody{
		Message:    "Text extraction and analysis complete",
		ResultKey:  resultKey,
		TextLength: result.TextLength,
	})
}

func (s *analysisService) run(ctx context.Context, ev model.AnalysisEvent, requestID string) (model.AnalysisResult, string, error) {
	if ev.S3Key == "" {
		return model.AnalysisResult{}, "", ErrKeyRequired
	}
	ref := model.ObjectRef{Bucket: ev.S3Bucket, Key: ev.S3Key}
	if ref.Bucket == "" {
		ref.Bucket = s.cfg.Bucket
	}
	s.log.Info("processing file", zap.String("bucket", ref.Bucket), zap.String("key", ref.Key))

	data, err := s.read(ctx, ref)
	if err != nil {
		return model.AnalysisResult{}, "", err
	}

	extractor, err := s.registry.Lookup(extract.ExtensionOf(ref.Key))
	if err != nil {
		return model.AnalysisResult{}, "", err
	}
	text, err := extractor.Extract(ctx, data)
	if err != nil {
		return model.AnalysisResult{}, "", eris.Wrapf(err, "extract %s", ref.Key)
	}
	length := utf8.RuneCountInString(text)
	s.log.Info("extracted text", zap.Int("characters", length))

	analysis, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		Prompt:    BuildPrompt(text, s.cfg.PromptChars),
	})
	if err != nil {
		return model.AnalysisResult{}, "", eris.Wrap(err, "analyze text")
	}
	s.log.Info("analysis complete")

	result := model.AnalysisResult{
		SourceFile:    ref.Key,
		ExtractedText: runePrefix(text, s.cfg.PreviewChars),
		TextLength:    length,
		Analysis:      analysis,
		ProcessedAt:   requestID,
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return model.AnalysisResult{}, "", eris.Wrap(err, "encode analysis result")
	}

	resultKey := ResultKey(ref.Key)
	if _, err := s.store.Put(ctx, model.ObjectRef{Bucket: ref.Bucket, Key: resultKey}, bytes.NewReader(out), storage.PutObjectOptions{
		Size:        int64(len(out)),
		ContentType: "application/json",
	}); err != nil {
		return model.AnalysisResult{}, "", eris.Wrapf(err, "store %s", resultKey)
	}
	s.log.Info("saved analysis", zap.String("result_key", resultKey))

	return result, resultKey, nil
}

func (s *analysisService) read(ctx context.Context, ref model.ObjectRef) ([]byte, error) {
	rc, _, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, eris.Wrapf(err, "get %s", ref.Key)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", ref.Key)
	}
	return data, nil
}

// BuildPrompt fills the contract analysis template with the first limit
// characters of text.
func BuildPrompt(text string, limit int) string {
	return fmt.Sprintf(promptTemplate, runePrefix(text, limit))
}

// ResultKey derives where the analysis of key is stored:
// "contracts/foo.pdf" becomes "analysis/foo_analysis.json". Keys outside
// contracts/ keep their prefix.
func ResultKey(key string) string {
	if rest, ok := strings.CutPrefix(key, contractsPrefix); ok {
		key = "analysis/" + rest
	}
	if i := strings.LastIndex(key, "."); i >= 0 && !strings.Contains(key[i:], "/") {
		key = key[:i]
	}
	return key + "_analysis.json"
}

func runePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
