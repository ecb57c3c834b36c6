package main

import (
	"context"
	"fmt"
	"os"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Config holds all environment variables for the template-service.
type Config struct {
	Port          string // Service port (default: 8084)
	MongoURL      string // MongoDB connection string
	MongoDBName   string // Database name
	XlsBinaryPath string // External BIFF8 encoder binary; empty uses the fallback
	ExportTempDir string // Temp dir for encoder hand-off files
}

// LoadConfig loads environment variables into Config struct and validates them.
// If AWS_USE_SECRETS=true it will attempt to read the Mongo URL from Secrets
// Manager and fall back to env vars on failure.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		MongoURL:      os.Getenv("MONGO_URL"),
		MongoDBName:   os.Getenv("MONGO_DB_NAME"),
		XlsBinaryPath: os.Getenv("XLS_ENCODER_PATH"),
		ExportTempDir: os.Getenv("EXPORT_TEMP_DIR"),
	}

	if cfg.Port == "" {
		cfg.Port = "8084"
	}
	if cfg.MongoDBName == "" {
		cfg.MongoDBName = "template_service"
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if mongoURL, err := readSecret(context.Background(), "template/MONGO_URL"); err == nil && mongoURL != "" {
			cfg.MongoURL = mongoURL
		}
	}

	if cfg.MongoURL == "" {
		return nil, fmt.Errorf("MONGO_URL is required")
	}

	return cfg, nil
}

func readSecret(ctx context.Context, name string) (string, error) {
	awsCfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}
	sm := secretsmanager.NewFromConfig(awsCfg)
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &name})
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}
	return *out.SecretString, nil
}
