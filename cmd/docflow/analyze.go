package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"docflow/internal/model"
)

var (
	analyzeBucket string
	analyzeKey    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract and analyze one stored document without going through a workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		policies, err := parsePolicies(cfg.Stages)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), envOptions{llm: true})
		if err != nil {
			return err
		}
		defer env.Close()

		stage := newAnalysis(env, policies.analysis)
		resp, err := stage.Handle(cmd.Context(), model.AnalysisEvent{
			S3Bucket: analyzeBucket,
			S3Key:    analyzeKey,
		}, "cli-"+uuid.NewString())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Body)
		if resp.StatusCode != 200 {
			return eris.Errorf("analysis failed with status %d", resp.StatusCode)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBucket, "bucket", "", "bucket holding the document (default DOCUMENT_BUCKET)")
	analyzeCmd.Flags().StringVar(&analyzeKey, "key", "", "object key of the document, e.g. contracts/msa.pdf")
	rootCmd.AddCommand(analyzeCmd)
}
