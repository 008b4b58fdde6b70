package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create a server config file interactively",
	Long: `Create a server config file interactively.

You will be prompted for the object store settings (bucket, region,
endpoint, credentials) and the metadata database. The result is written
as YAML to the path given with --config (default: ./config.yaml).`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

// fileConfig mirrors the config file layout written by configure.
type fileConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Type string `yaml:"type"`
		DSN  string `yaml:"dsn"`
	} `yaml:"database"`
	Storage struct {
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		AccessKeyID     string `yaml:"access_key_id,omitempty"`
		SecretAccessKey string `yaml:"secret_access_key,omitempty"`
		Endpoint        string `yaml:"endpoint,omitempty"`
		UsePathStyle    bool   `yaml:"use_path_style,omitempty"`
	} `yaml:"storage"`
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("'%s' already exists. Overwrite it", configPath),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	var cfg fileConfig

	bucketPrompt := promptui.Prompt{
		Label: "Bucket",
		Validate: func(input string) error {
			if input == "" {
				return errors.New("bucket is required")
			}
			return nil
		},
	}
	bucket, err := bucketPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Storage.Bucket = bucket

	regionPrompt := promptui.Prompt{
		Label:   "Region",
		Default: "us-east-1",
	}
	region, err := regionPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Storage.Region = region

	endpointPrompt := promptui.Prompt{
		Label: "Endpoint (empty for AWS)",
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			parsedURL, parseErr := url.Parse(input)
			if parseErr != nil {
				return fmt.Errorf("invalid URL: %w", parseErr)
			}
			if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
				return errors.New("URL must start with http:// or https://")
			}
			return nil
		},
	}
	endpoint, err := endpointPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Storage.Endpoint = endpoint
	if endpoint != "" {
		// MinIO and most S3-compatible stores want path-style addressing
		cfg.Storage.UsePathStyle = true
	}

	accessKeyPrompt := promptui.Prompt{
		Label: "Access Key ID (empty for the default credential chain)",
	}
	accessKey, err := accessKeyPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Storage.AccessKeyID = accessKey

	if accessKey != "" {
		secretKeyPrompt := promptui.Prompt{
			Label: "Secret Access Key",
			Mask:  '*',
		}
		secretKey, promptErr := secretKeyPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		cfg.Storage.SecretAccessKey = secretKey
	}

	dbPrompt := promptui.Select{
		Label: "Database",
		Items: []string{"sqlite", "postgres"},
	}
	_, dbType, err := dbPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Database.Type = dbType

	dsnDefault := "filedrop.db"
	if dbType == "postgres" {
		dsnDefault = "postgres://localhost:5432/filedrop"
	}
	dsnPrompt := promptui.Prompt{
		Label:   "Database DSN",
		Default: dsnDefault,
	}
	dsn, err := dsnPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	cfg.Database.DSN = dsn

	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: "8080",
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	if _, scanErr := fmt.Sscanf(portStr, "%d", &cfg.Server.Port); scanErr != nil {
		return fmt.Errorf("invalid port: %s", portStr)
	}

	buf, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, buf, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Config written to %s\n", configPath)
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
