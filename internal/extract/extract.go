// Package extract turns stored document bytes into plain text. Formats are
// looked up by file extension in a Registry; adding a format means
// registering another Extractor.
package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnsupportedType matches any UnsupportedTypeError via errors.Is.
var ErrUnsupportedType = eris.New("unsupported file type")

// UnsupportedTypeError reports an extension with no registered extractor.
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return "Unsupported file type: " + e.Ext
}

// Is lets errors.Is(err, ErrUnsupportedType) match.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// Extractor pulls plain text out of a single document format.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

// Extract calls f(ctx, data).
func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// Registry maps normalized extensions to extractors. Registration happens at
// construction time; lookups are read-only and safe for concurrent use.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Default returns a registry with the PDF and Word extractors installed.
func Default() *Registry {
	r := NewRegistry()
	r.Register("pdf", PDF{})
	word := Docx{}
	r.Register("docx", word)
	r.Register("doc", word)
	return r
}

// Register binds ext (case-insensitive, leading dot optional) to e,
// replacing any previous registration.
func (r *Registry) Register(ext string, e Extractor) {
	r.extractors[normalize(ext)] = e
}

// Lookup returns the extractor for ext or an *UnsupportedTypeError.
func (r *Registry) Lookup(ext string) (Extractor, error) {
	ext = normalize(ext)
	e, ok := r.extractors[ext]
	if !ok {
		return nil, &UnsupportedTypeError{Ext: ext}
	}
	return e, nil
}

// Extensions lists the registered extensions.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		out = append(out, ext)
	}
	return out
}

// ExtensionOf returns the lower-cased text after the last '.' in key. A key
// without a dot yields the whole lower-cased key, which never matches a
// registered format.
func ExtensionOf(key string) string {
	lower := strings.ToLower(key)
	if i := strings.LastIndex(lower, "."); i >= 0 {
		return lower[i+1:]
	}
	return lower
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
