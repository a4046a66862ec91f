package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docflow/internal/config"
	handlers "docflow/internal/http/handler"
	"docflow/internal/http/middleware"
	"docflow/internal/model"
	"docflow/internal/service"
	serviceMocks "docflow/internal/service/mocks"
	"docflow/internal/vault"
	vaultpg "docflow/internal/vault/postgres"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "worker", "analyze", "migrate"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "docflow", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestCommandFlags(t *testing.T) {
	require.NotNil(t, serveCmd.Flags().Lookup("port"))
	require.NotNil(t, analyzeCmd.Flags().Lookup("key"))
	require.NotNil(t, analyzeCmd.Flags().Lookup("bucket"))

	flag := migrateCmd.Flags().Lookup("seed-secret-env")
	require.NotNil(t, flag)
	assert.Equal(t, "WEBHOOK_SECRET", flag.DefValue)
}

func TestNewVault(t *testing.T) {
	v, err := newVault(config.VaultConfig{Backend: "env"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &vault.EnvVault{}, v)

	_, err = newVault(config.VaultConfig{Backend: "postgres"}, nil)
	assert.Error(t, err)

	_, err = newVault(config.VaultConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)

	var _ vault.Vault = (*vaultpg.SecretPostgres)(nil)
}

func TestParsePolicies(t *testing.T) {
	p, err := parsePolicies(config.StageConfig{
		UploadsErrorPolicy:   "propagate",
		ContractsErrorPolicy: "report",
		AnalysisErrorPolicy:  "report",
	})
	require.NoError(t, err)
	assert.Equal(t, service.Propagate, p.uploads)
	assert.Equal(t, service.Report, p.contracts)
	assert.Equal(t, service.Report, p.analysis)

	_, err = parsePolicies(config.StageConfig{UploadsErrorPolicy: "report", ContractsErrorPolicy: "swallow", AnalysisErrorPolicy: "report"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONTRACTS_ERROR_POLICY")
}

func TestNewApp(t *testing.T) {
	uploads := new(serviceMocks.MockIntakeStage)
	uploads.On("Handle", mock.Anything, mock.Anything).
		Return(model.Response{StatusCode: 200, Body: `{"message":"accepted"}`}, nil)

	reg := prometheus.NewRegistry()
	app, err := newApp(handlers.Deps{
		Uploads:   uploads,
		Contracts: new(serviceMocks.MockIntakeStage),
		Gatherer:  reg,
	}, zap.NewNop(), reg)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/webhooks/uploads", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/analysis", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			found = true
		}
	}
	assert.True(t, found)

	_, err = newApp(handlers.Deps{}, zap.NewNop(), reg)
	assert.Error(t, err, "metrics registered twice on the same registry")
}
