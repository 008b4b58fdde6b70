package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skovric/filedrop/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filedrop",
	Short:   "Direct-upload file service backed by S3-compatible storage",
	Long: `Filedrop issues short-lived presigned URLs so clients upload files
straight to an S3-compatible object store, then records and manages
the file metadata.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "configure" {
			// configure writes the config file; it must not require one
			return nil
		}

		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (env: FILEDROP_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: FILEDROP_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("bucket", "", "object store bucket (env: FILEDROP_STORAGE_BUCKET)")
	rootCmd.PersistentFlags().String("endpoint", "", "object store endpoint override, e.g. a MinIO URL (env: FILEDROP_STORAGE_ENDPOINT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
