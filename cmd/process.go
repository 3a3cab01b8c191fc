package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/evidence"
)

var (
	processSource       string
	processNewRecords   string
	processSMS          string
	processConsolidated string
	processIVRAudio     string
	processOut          string
	processFolder       string
	processAccount      string
	processConcurrency  int
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Assemble evidence folders for a batch of customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("process"); err != nil {
			return err
		}

		mapping, err := loadMapping()
		if err != nil {
			return err
		}

		inputs, err := evidence.LoadInputs(evidence.InputPaths{
			Source:       processSource,
			NewRecords:   processNewRecords,
			SMS:          processSMS,
			Consolidated: processConsolidated,
			IVRAudio:     processIVRAudio,
		}, mapping)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		concurrency := processConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.Concurrency
		}

		runner := evidence.NewRunner(inputs, evidence.Options{
			OutputRoot:  processOut,
			Folder:      processFolder,
			AccountID:   processAccount,
			Concurrency: concurrency,
			Store:       st,
		})

		result, err := runner.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "process")
		}

		zap.L().Info("processing complete",
			zap.Int("customers", result.Customers),
			zap.Int("succeeded", result.Succeeded),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
			zap.Int("artifacts", result.Artifacts),
		)

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	processCmd.Flags().StringVar(&processSource, "source", "", "primary customer table (required)")
	processCmd.Flags().StringVar(&processNewRecords, "new-records", "", "channel activity table (required)")
	processCmd.Flags().StringVar(&processIVRAudio, "ivr-audio", "", "IVR audio file copied per customer (required)")
	processCmd.Flags().StringVar(&processSMS, "sms", "", "SMS delivery table")
	processCmd.Flags().StringVar(&processConsolidated, "consolidated", "", "consolidated call-recordings index")
	processCmd.Flags().StringVar(&processOut, "out", "", "output root directory (required)")
	processCmd.Flags().StringVar(&processFolder, "folder", "", "container folder created under the output root (required)")
	processCmd.Flags().StringVar(&processAccount, "account", "", "process only the customer with this account id")
	processCmd.Flags().IntVar(&processConcurrency, "concurrency", 0, "concurrent customers (default from config)")
	_ = processCmd.MarkFlagRequired("source")
	_ = processCmd.MarkFlagRequired("new-records")
	_ = processCmd.MarkFlagRequired("ivr-audio")
	_ = processCmd.MarkFlagRequired("out")
	_ = processCmd.MarkFlagRequired("folder")
	rootCmd.AddCommand(processCmd)
}
