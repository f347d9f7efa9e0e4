package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creerweb/contact-form/internal/leads"
)

// Supported EMAIL_PROVIDER values.
const (
	EmailProviderSES      = "ses"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderLog      = "log"
)

// Supported LEAD_STORE values.
const (
	LeadStoreDynamoDB = "dynamodb"
	LeadStoreMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string
	Port     string

	DynamoDBTable string
	LeadStore     string

	SenderEmail    string
	SenderName     string
	RecipientEmail string
	CORSOrigin     string
	SiteName       string

	EmailProvider  string
	SendGridAPIKey string

	MinMessageLength int
	SendConfirmation bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      strings.ToLower(getEnv("ENV", "production")),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		DynamoDBTable: getEnv("DYNAMODB_TABLE", ""),
		LeadStore:     strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", LeadStoreDynamoDB))),

		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderName:     getEnv("SENDER_NAME", "Website Contact Form"),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		SiteName:       getEnv("SITE_NAME", "CreerWebConsulting.com"),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailProviderSES))),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		MinMessageLength: getEnvAsInt("MIN_MESSAGE_LENGTH", leads.DefaultMinMessageLength),
		SendConfirmation: getEnvAsBool("SEND_CONFIRMATION", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.RecipientEmail) == "" {
		errs = append(errs, errors.New("RECIPIENT_EMAIL is required"))
	}

	switch c.LeadStore {
	case LeadStoreDynamoDB:
		if strings.TrimSpace(c.DynamoDBTable) == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required"))
		}
	case LeadStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported LEAD_STORE %q", c.LeadStore))
	}

	switch c.EmailProvider {
	case EmailProviderSES:
		if strings.TrimSpace(c.SenderEmail) == "" {
			errs = append(errs, errors.New("SENDER_EMAIL is required"))
		}
	case EmailProviderSendGrid:
		if strings.TrimSpace(c.SenderEmail) == "" {
			errs = append(errs, errors.New("SENDER_EMAIL is required"))
		}
		if strings.TrimSpace(c.SendGridAPIKey) == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid"))
		}
	case EmailProviderLog:
	default:
		errs = append(errs, fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.EmailProvider))
	}

	if c.MinMessageLength < 0 {
		errs = append(errs, fmt.Errorf("MIN_MESSAGE_LENGTH must not be negative, got %d", c.MinMessageLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Policy derives the intake rules.
func (c *Config) Policy() leads.Policy {
	return leads.Policy{
		MinMessageLength: c.MinMessageLength,
		SendConfirmation: c.SendConfirmation,
	}
}

// ExposeErrors reports whether 500 responses may include error detail.
func (c *Config) ExposeErrors() bool {
	switch c.Env {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}
