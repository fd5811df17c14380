/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/Emiliocodings/ServiceUsers/config"
	"github.com/Emiliocodings/ServiceUsers/internal/db"
	"github.com/Emiliocodings/ServiceUsers/internal/logger"
	"github.com/Emiliocodings/ServiceUsers/internal/services"
	"github.com/Emiliocodings/ServiceUsers/internal/storage"
	"github.com/Emiliocodings/ServiceUsers/internal/store"
	"github.com/spf13/cobra"
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON snapshot of all users to object storage",
	Long: `Writes every user, ordered by id, as one JSON array to the bucket
selected by EXPORT_BACKEND (minio or gcs). Usage:

	serviceusers export
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		log := logger.New(os.Stderr, cfg.Log)
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		objects, err := storage.Open(ctx, cfg.Export)
		if err != nil {
			return err
		}
		defer func() {
			_ = objects.Close()
		}()

		exporter := services.NewExportService(store.NewUserRepository(dbConn), objects, cfg.Export.Prefix, cfg.Export.PageSize)
		result, err := exporter.Export(ctx)
		if err != nil {
			return err
		}

		log.Info("users exported",
			"bucket", result.Bucket,
			"key", result.Key,
			"count", result.Count,
			"bytes", result.Bytes,
		)
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", result.Bucket, result.Key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
