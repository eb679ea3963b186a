package config

import (
	"fmt"
	"os"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendDynamoDB = "dynamodb"
)

// Read failure policies
const (
	ReadPolicyOpen   = "open"
	ReadPolicyClosed = "closed"
)

// Config holds all configuration for the application
type Config struct {
	Port              string
	DataFile          string
	StaticDir         string
	LogLevel          string
	StoreBackend      string
	ReadFailurePolicy string
	BadgerPath        string
	DynamoDBEndpoint  string
	DynamoDBRegion    string
	DynamoDBTable     string
	AWSAccessKey      string
	AWSSecretKey      string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "3000"),
		DataFile:          getEnv("DATA_FILE", "messages.json"),
		StaticDir:         getEnv("STATIC_DIR", "simple-frontend"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreBackend:      getEnv("STORE_BACKEND", BackendFile),
		ReadFailurePolicy: getEnv("READ_FAILURE_POLICY", ReadPolicyOpen),
		BadgerPath:        getEnv("BADGER_PATH", "data/badger"),
		DynamoDBEndpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
		DynamoDBRegion:    getEnv("DYNAMODB_REGION", "us-east-1"),
		DynamoDBTable:     getEnv("DYNAMODB_TABLE", "message-board"),
		AWSAccessKey:      getEnv("AWS_ACCESS_KEY_ID", "dummy"),
		AWSSecretKey:      getEnv("AWS_SECRET_ACCESS_KEY", "dummy"),
	}
}

// Validate rejects values the server cannot act on
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile, BackendBadger, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.ReadFailurePolicy {
	case ReadPolicyOpen, ReadPolicyClosed:
	default:
		return fmt.Errorf("unknown READ_FAILURE_POLICY %q", c.ReadFailurePolicy)
	}

	return nil
}

// getEnv reads an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
