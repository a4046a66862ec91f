package vault

import (
	"context"
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
)

// ErrSecretNotFound is returned when no secret is stored under the requested id.
var ErrSecretNotFound = eris.New("secret not found")

// Vault returns secret material by identifier. It is a plain key-value lookup;
// callers decide how to interpret the returned string.
type Vault interface {
	GetSecret(ctx context.Context, id string) (string, error)
}

// EnvVault resolves secrets from process environment variables. The secret id
// is upper-cased and every character outside [A-Z0-9] becomes '_', so
// "webhook/source-a" is read from WEBHOOK_SOURCE_A.
type EnvVault struct {
	lookup func(string) (string, bool)
}

// NewEnv returns a Vault backed by the process environment.
func NewEnv() *EnvVault {
	return &EnvVault{lookup: os.LookupEnv}
}

var _ Vault = (*EnvVault)(nil)

// GetSecret returns the value of the environment variable derived from id.
func (v *EnvVault) GetSecret(_ context.Context, id string) (string, error) {
	name := EnvName(id)
	if name == "" {
		return "", eris.Wrap(ErrSecretNotFound, "empty secret id")
	}
	s, ok := v.lookup(name)
	if !ok {
		return "", eris.Wrapf(ErrSecretNotFound, "env %s", name)
	}
	return s, nil
}

// EnvName maps a secret id to the environment variable that holds it.
func EnvName(id string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.TrimSpace(id))
}
