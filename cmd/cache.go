package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pruneDays int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Result cache maintenance",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cache entries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(cmd.Context()); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		days := pruneDays
		if days == 0 {
			days = cfg.Cache.RetentionDays
		}
		n, err := st.Prune(cmd.Context(), time.Duration(days)*24*time.Hour)
		if err != nil {
			return eris.Wrap(err, "prune cache")
		}

		zap.L().Info("cache pruned",
			zap.Int("deleted", n),
			zap.Int("retention_days", days),
		)
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().IntVar(&pruneDays, "days", 0, "retention in days (default from config)")
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
