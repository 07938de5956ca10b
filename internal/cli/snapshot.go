package cli

import (
	"encoding/json"

	"fsqa-audit-service/internal/config"
	"fsqa-audit-service/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSnapshotCmd records a readiness snapshot for one facility, for use from cron jobs.
func NewSnapshotCmd(configPath *string) *cobra.Command {
	var (
		facilityID  int64
		triggeredBy string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record a documentation readiness snapshot for a facility",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			svc, err := buildServices(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					log.Warn("closing resources", zap.Error(err))
				}
			}()

			snapshot, err := svc.readiness.SaveSnapshot(cmd.Context(), facilityID, triggeredBy)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		},
	}
	cmd.Flags().Int64Var(&facilityID, "facility", 0, "facility id")
	cmd.Flags().StringVar(&triggeredBy, "triggered-by", "scheduler", "who or what requested the snapshot")
	_ = cmd.MarkFlagRequired("facility")
	return cmd
}
