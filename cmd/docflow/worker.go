package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"docflow/internal/llm"
	"docflow/internal/otel"
	"docflow/internal/workflow"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Temporal worker hosting the document-processing workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := otel.Init(ctx, zap.L())
		if err != nil {
			return err
		}
		defer shutdownTracing(context.Background())

		policies, err := parsePolicies(cfg.Stages)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, envOptions{llm: true, temporal: true})
		if err != nil {
			return err
		}
		defer env.Close()

		w := worker.New(env.Temporal, cfg.Temporal.TaskQueue, worker.Options{})
		workflow.Register(w, cfg.Temporal.WorkflowName,
			workflow.Pipeline{Options: workflow.OptionsFromConfig(cfg.Temporal)},
			&workflow.Activities{Stage: newAnalysis(env, policies.analysis)},
		)

		zap.L().Info("starting worker",
			zap.String("task_queue", cfg.Temporal.TaskQueue),
			zap.String("workflow", cfg.Temporal.WorkflowName),
		)
		if err := w.Run(interruptOn(ctx)); err != nil {
			return eris.Wrap(err, "worker run")
		}
		return nil
	},
}

// interruptOn adapts ctx cancellation to the channel worker.Run waits on.
func interruptOn(ctx context.Context) <-chan interface{} {
	ch := make(chan interface{}, 1)
	go func() {
		<-ctx.Done()
		ch <- struct{}{}
	}()
	return ch
}

// newCompleter builds the configured LLM backend on its own, for commands
// that treat analysis as optional.
func newCompleter(ctx context.Context) (llm.Client, error) {
	return llm.New(ctx, cfg.LLM)
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
