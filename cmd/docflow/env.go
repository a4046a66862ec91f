package main

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"docflow/internal/config"
	"docflow/internal/database"
	"docflow/internal/extract"
	"docflow/internal/llm"
	"docflow/internal/service"
	"docflow/internal/storage"
	"docflow/internal/vault"
	vaultpg "docflow/internal/vault/postgres"
	"docflow/internal/workflow"
)

// stageEnv holds the collaborators the serve, worker and analyze commands
// build their stages from. Optional members are nil when not requested.
type stageEnv struct {
	DB       *sql.DB
	Store    storage.Storage
	Vault    vault.Vault
	LLM      llm.Client
	Trigger  workflow.Trigger
	Temporal client.Client
}

type envOptions struct {
	vault    bool
	llm      bool
	temporal bool
}

// Close releases resources held by the environment.
func (e *stageEnv) Close() {
	if e.Temporal != nil {
		e.Temporal.Close()
	}
	if e.LLM != nil {
		_ = e.LLM.Close()
	}
	if e.DB != nil {
		_ = e.DB.Close()
	}
}

// initEnv connects to object storage and whatever else opts asks for.
// Callers should defer env.Close().
func initEnv(ctx context.Context, opts envOptions) (env *stageEnv, err error) {
	env = &stageEnv{}
	defer func() {
		if err != nil {
			env.Close()
			env = nil
		}
	}()

	if cfg.Database.Enabled() {
		if env.DB, err = database.NewPostgres(ctx, cfg.Database); err != nil {
			return env, eris.Wrap(err, "connect database")
		}
	}

	if env.Store, err = storage.NewMinIO(ctx, cfg.MinIO); err != nil {
		return env, eris.Wrap(err, "init object storage")
	}

	if opts.vault {
		if env.Vault, err = newVault(cfg.Vault, env.DB); err != nil {
			return env, err
		}
	}

	if opts.llm {
		if env.LLM, err = llm.New(ctx, cfg.LLM); err != nil {
			return env, err
		}
	}

	if opts.temporal {
		c, err := workflow.Dial(cfg.Temporal, zap.L())
		if err != nil {
			return env, err
		}
		env.Temporal = c
		env.Trigger = workflow.NewTemporalTrigger(c, cfg.Temporal.TaskQueue)
	}

	return env, nil
}

// newVault picks the credential backend. The postgres backend needs an open
// database; the env backend reads process environment variables.
func newVault(c config.VaultConfig, db *sql.DB) (vault.Vault, error) {
	switch c.Backend {
	case "", "env":
		return vault.NewEnv(), nil
	case "postgres":
		if db == nil {
			return nil, eris.New("vault backend postgres requires DB_HOST")
		}
		return vaultpg.NewSecretPostgres(db), nil
	default:
		return nil, eris.Errorf("unknown vault backend %q", c.Backend)
	}
}

type stagePolicies struct {
	uploads, contracts, analysis service.ErrorPolicy
}

func parsePolicies(c config.StageConfig) (stagePolicies, error) {
	var (
		p   stagePolicies
		err error
	)
	if p.uploads, err = service.ParseErrorPolicy(c.UploadsErrorPolicy); err != nil {
		return p, eris.Wrap(err, "UPLOADS_ERROR_POLICY")
	}
	if p.contracts, err = service.ParseErrorPolicy(c.ContractsErrorPolicy); err != nil {
		return p, eris.Wrap(err, "CONTRACTS_ERROR_POLICY")
	}
	if p.analysis, err = service.ParseErrorPolicy(c.AnalysisErrorPolicy); err != nil {
		return p, eris.Wrap(err, "ANALYSIS_ERROR_POLICY")
	}
	return p, nil
}

func newIntake(env *stageEnv, variant service.Variant, policy service.ErrorPolicy) service.IntakeStage {
	return service.NewIntakeService(service.IntakeConfig{
		Variant:      variant,
		Bucket:       cfg.MinIO.Bucket,
		WorkflowName: cfg.Temporal.WorkflowName,
		SecretID:     cfg.Vault.SecretID,
		Policy:       policy,
	}, env.Store, env.Vault, env.Trigger, zap.L())
}

func newAnalysis(env *stageEnv, policy service.ErrorPolicy) service.AnalysisStage {
	return service.NewAnalysisService(service.AnalysisConfig{
		Bucket:       cfg.MinIO.Bucket,
		Model:        cfg.LLM.Model,
		MaxTokens:    cfg.LLM.MaxTokens,
		PromptChars:  cfg.LLM.PromptChars,
		PreviewChars: cfg.LLM.PreviewChars,
		Policy:       policy,
	}, env.Store, extract.Default(), env.LLM, zap.L())
}
