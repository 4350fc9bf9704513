// Command schema manages the telemetry tables: apply the base schema, run
// the timestamp conversion, or produce the per-device CSV reports.
package main

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gridscope/power-telemetry/internal/cloud"
	"github.com/gridscope/power-telemetry/internal/config"
	"github.com/gridscope/power-telemetry/internal/database"
	"github.com/gridscope/power-telemetry/internal/migrate"
	"github.com/gridscope/power-telemetry/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the device power telemetry schema",
	}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Drop and recreate the devices/power tables (DESTROYS existing rows)",
		RunE:  runApply,
	}
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Migrate power.timestamp from TEXT to TIMESTAMP",
		RunE:  runConvert,
	}
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run the hourly rollup and upload per-device CSVs to S3",
		RunE:  runReport,
	}

	rootCmd.AddCommand(applyCmd, convertCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func connect() *sqlx.DB {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	return db
}

func runApply(cmd *cobra.Command, args []string) error {
	db := connect()
	defer db.Close()

	log.Warn().Msg("applying base schema; existing devices/power rows will be dropped")
	if err := migrate.Reset(context.Background(), db); err != nil {
		return err
	}
	log.Info().Msg("schema applied")
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	db := connect()
	defer db.Close()

	if err := migrate.ConvertTimestamps(context.Background(), db); err != nil {
		log.Error().Err(err).Msg("timestamp conversion failed; no changes were kept")
		return err
	}
	log.Info().Msg("power.timestamp converted to TIMESTAMP")
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	db := connect()
	defer db.Close()

	svcs := service.New(db)
	if config.UseCloudServices() {
		s3, err := cloud.NewS3Client(config.AWSRegion(), config.S3Bucket())
		if err != nil {
			return err
		}
		var sns *cloud.SNSClient
		if arn := config.SNSTopicArn(); arn != "" {
			if sns, err = cloud.NewSNSClient(config.AWSRegion(), arn); err != nil {
				return err
			}
		}
		svcs.WithCloud(s3, sns)
	}

	uploaded, err := svcs.Reports.Run()
	if err != nil {
		return err
	}
	log.Info().Int("files", uploaded).Msg("report run complete")
	return nil
}
