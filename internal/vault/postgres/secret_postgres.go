package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"

	"docflow/internal/vault"
)

// SecretPostgres is a PostgreSQL implementation of vault.Vault.
// It uses database/sql with parameterized queries and contains no business logic.
type SecretPostgres struct {
	db *sql.DB
}

// NewSecretPostgres creates a new SecretPostgres vault.
func NewSecretPostgres(db *sql.DB) *SecretPostgres {
	return &SecretPostgres{db: db}
}

var _ vault.Vault = (*SecretPostgres)(nil)

// GetSecret fetches a single secret by its ID.
func (r *SecretPostgres) GetSecret(ctx context.Context, id string) (string, error) {
	const q = `
		SELECT secret
		FROM webhook_secrets
		WHERE id = $1
	`
	var secret string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", eris.Wrapf(vault.ErrSecretNotFound, "secret %q", id)
		}
		return "", eris.Wrapf(err, "query secret %q", id)
	}
	return secret, nil
}

// PutSecret inserts or replaces a secret.
func (r *SecretPostgres) PutSecret(ctx context.Context, id, secret string) error {
	const q = `
		INSERT INTO webhook_secrets (id, secret, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET secret = EXCLUDED.secret, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, q, id, secret); err != nil {
		return eris.Wrapf(err, "upsert secret %q", id)
	}
	return nil
}
