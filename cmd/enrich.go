package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/dataset"
	"github.com/lotleads/enrich-cli/internal/model"
)

var (
	enrichInput       string
	enrichOutput      string
	enrichMapping     string
	enrichLimit       int
	enrichConcurrency int
	enrichDryRun      bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Batch enrich a CSV or XLSX lead file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if enrichInput == "" {
			return eris.New("--input is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mappingPath := enrichMapping
		if mappingPath == "" {
			mappingPath = cfg.Dataset.MappingFile
		}
		mapping, err := dataset.LoadMapping(mappingPath)
		if err != nil {
			return err
		}

		ds, err := dataset.Read(enrichInput, mapping)
		if err != nil {
			return err
		}

		records := ds.Records
		if enrichLimit > 0 && enrichLimit < len(records) {
			records = records[:enrichLimit]
		}

		zap.L().Info("dataset loaded",
			zap.String("input", enrichInput),
			zap.Int("rows", len(ds.Records)),
			zap.Int("to_process", len(records)),
		)

		if enrichDryRun {
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.CompanyName, r.Location())
			}
			return nil
		}

		if enrichConcurrency > 0 {
			cfg.Enrich.Concurrency = enrichConcurrency
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Pipeline.RunBatch(ctx, records)
		if err != nil {
			return err
		}

		byID := make(map[string]*model.EnrichmentResult, len(results))
		var done, failed int
		var totalCost float64
		for _, res := range results {
			if res == nil {
				continue
			}
			byID[res.RecordID] = res
			totalCost += res.CostUSD
			if res.Status == model.RecordStatusDone {
				done++
			} else {
				failed++
			}
		}

		// Per-record saves during the run are warn-only; a final batch
		// upsert makes sure the store reflects the full run.
		batch := make([]model.EnrichmentResult, 0, len(results))
		for _, res := range results {
			if res != nil {
				batch = append(batch, *res)
			}
		}
		if err := env.Store.SaveResults(ctx, batch); err != nil {
			zap.L().Warn("batch persist failed", zap.Error(err))
		}

		outPath := enrichOutput
		if outPath == "" {
			outPath = strings.TrimSuffix(enrichInput, filepath.Ext(enrichInput)) + "_enriched.csv"
		}
		if err := dataset.WriteCSV(outPath, ds, byID); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int("done", done),
			zap.Int("failed", failed),
			zap.Float64("total_cost_usd", totalCost),
			zap.String("output", outPath),
		)

		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichInput, "input", "", "lead file to enrich (.csv or .xlsx)")
	enrichCmd.Flags().StringVar(&enrichOutput, "output", "", "output CSV path (default <input>_enriched.csv)")
	enrichCmd.Flags().StringVar(&enrichMapping, "mapping", "", "YAML column mapping file")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max number of records to process (0 = all)")
	enrichCmd.Flags().IntVar(&enrichConcurrency, "concurrency", 0, "concurrent records (0 = config default)")
	enrichCmd.Flags().BoolVar(&enrichDryRun, "dry-run", false, "parse the dataset and list records without enriching")
	rootCmd.AddCommand(enrichCmd)
}
