package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdata/pricescan-cli/internal/model"
)

var scanMarket string

var scanCmd = &cobra.Command{
	Use:   "scan <ean> [ean...]",
	Short: "Resolve retail prices for one or more EANs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Pipeline.RunBatch(cmd.Context(), scanMarket, args)
		if err != nil {
			return err
		}

		resp := model.BatchResponse{Market: scanMarket, Results: results}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return eris.Wrap(err, "encode results")
		}

		for _, r := range results {
			if r.Error != "" {
				zap.L().Warn("scan: identifier failed",
					zap.String("ean", r.EAN),
					zap.String("error", r.Error),
				)
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanMarket, "market", "DE", "market code (e.g. DE, FR, UK)")
	rootCmd.AddCommand(scanCmd)
}
