package config

import (
	"fmt"
	"strings"
)

type StorageConfig struct {
	Mode      string // local or s3
	ExportDir string
	AWSRegion string
	AWSBucket string
	S3Prefix  string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:      strings.ToLower(getEnv("STORAGE_MODE", "local")),
		ExportDir: getEnv("EXPORT_DIR", "./exports"),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		AWSBucket: getEnv("AWS_BUCKET", ""),
		S3Prefix:  getEnv("S3_PREFIX", "exports"),
	}
}

func (s StorageConfig) validate() error {
	switch s.Mode {
	case "local":
		return nil
	case "s3":
		if s.AWSBucket == "" {
			return fmt.Errorf("AWS_BUCKET is required when STORAGE_MODE=s3")
		}
		return nil
	}
	return fmt.Errorf("STORAGE_MODE must be local or s3, got %q", s.Mode)
}
