package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/lotleads/enrich-cli/internal/model"
)

var (
	runCompany string
	runCity    string
	runState   string
	runWebsite string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich a single business record and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runCompany == "" {
			return eris.New("--company is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		record := model.Record{
			ID:          uuid.NewString(),
			CompanyName: runCompany,
			City:        runCity,
			State:       runState,
			Website:     runWebsite,
		}

		result, err := env.Pipeline.Run(ctx, record)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runCompany, "company", "", "business name to enrich")
	runCmd.Flags().StringVar(&runCity, "city", "", "city")
	runCmd.Flags().StringVar(&runState, "state", "", "two-letter state code")
	runCmd.Flags().StringVar(&runWebsite, "website", "", "known website, if any")
	rootCmd.AddCommand(runCmd)
}
