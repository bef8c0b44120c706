package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

const (
	BackendWatson = "watson"
	BackendOpenAI = "openai"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8000"`

	DatabaseURL string `env:"DATABASE_URL"`

	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	ImageBucket       string `env:"IMAGE_BUCKET" envDefault:"images"`
	LocalStorageDir   string `env:"LOCAL_STORAGE_DIR" envDefault:"./data/storage"`

	ClassifierBackend string `env:"CLASSIFIER_BACKEND" envDefault:"watson"`
	VREndpoint        string `env:"VR_ENDPOINT"`
	VRAPIKey          string `env:"VR_API_KEY"`
	VRModel           string `env:"VR_MODEL"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	CredentialsFile string `env:"CREDENTIALS_FILE" envDefault:"credentials.json"`
}

// credentialsFile mirrors the nested credentials.json layout the original
// deployment of this app used for its service keys.
type credentialsFile struct {
	ObjectStorage struct {
		Endpoint        string `json:"COS_ENDPOINT"`
		AccessKeyID     string `json:"COS_API_KEY_ID"`
		SecretAccessKey string `json:"COS_SECRET_ACCESS_KEY"`
		Region          string `json:"COS_REGION"`
		Bucket          string `json:"BUCKET"`
	} `json:"credentials_cos"`
	Database struct {
		URL string `json:"DATABASE_URL"`
	} `json:"credentials_db"`
	VisualRecognition struct {
		Endpoint string `json:"VR_ENDPOINT"`
		APIKey   string `json:"VR_API_KEY"`
		Model    string `json:"VR_MODEL"`
	} `json:"credentials_vr"`
}

// Load resolves configuration from the process environment, then fills any
// fields still empty from the local credentials file if one exists. Missing
// database or classifier credentials are not an error; they put the service
// into the corresponding degraded mode.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config from environment: %w", err)
	}

	if err := cfg.applyCredentialsFile(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) applyCredentialsFile() error {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading credentials file %s: %w", cfg.CredentialsFile, err)
	}

	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("error parsing credentials file %s: %w", cfg.CredentialsFile, err)
	}
	slog.Info("loaded local credentials file", "path", cfg.CredentialsFile)

	setIfEmpty(&cfg.S3EndpointURL, creds.ObjectStorage.Endpoint)
	setIfEmpty(&cfg.S3AccessKeyID, creds.ObjectStorage.AccessKeyID)
	setIfEmpty(&cfg.S3SecretAccessKey, creds.ObjectStorage.SecretAccessKey)
	setIfEmpty(&cfg.S3Region, creds.ObjectStorage.Region)
	setIfEmpty(&cfg.ImageBucket, creds.ObjectStorage.Bucket)
	setIfEmpty(&cfg.DatabaseURL, creds.Database.URL)
	setIfEmpty(&cfg.VREndpoint, creds.VisualRecognition.Endpoint)
	setIfEmpty(&cfg.VRAPIKey, creds.VisualRecognition.APIKey)
	setIfEmpty(&cfg.VRModel, creds.VisualRecognition.Model)

	return nil
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

func (cfg *Config) HasS3() bool {
	return cfg.S3EndpointURL != "" && cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != ""
}

func (cfg *Config) HasDatabase() bool {
	return cfg.DatabaseURL != ""
}

func (cfg *Config) HasClassifier() bool {
	switch cfg.ClassifierBackend {
	case BackendOpenAI:
		return cfg.OpenAIAPIKey != ""
	default:
		return cfg.VREndpoint != "" && cfg.VRAPIKey != "" && cfg.VRModel != ""
	}
}
