package config

import (
	"strings"
	"testing"

	"github.com/creerweb/contact-form/internal/leads"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "PORT", "DYNAMODB_TABLE", "LEAD_STORE", "SENDER_EMAIL", "SENDER_NAME",
		"RECIPIENT_EMAIL", "CORS_ORIGIN", "SITE_NAME", "EMAIL_PROVIDER", "SENDGRID_API_KEY",
		"MIN_MESSAGE_LENGTH", "SEND_CONFIRMATION", "AWS_REGION", "AWS_ENDPOINT_OVERRIDE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected default env production, got %s", cfg.Env)
	}
	if cfg.CORSOrigin != "*" {
		t.Fatalf("expected default CORS origin *, got %s", cfg.CORSOrigin)
	}
	if cfg.LeadStore != LeadStoreDynamoDB || cfg.EmailProvider != EmailProviderSES {
		t.Fatalf("expected dynamodb + ses defaults, got %s + %s", cfg.LeadStore, cfg.EmailProvider)
	}
	if cfg.MinMessageLength != leads.DefaultMinMessageLength {
		t.Fatalf("expected default message length %d, got %d", leads.DefaultMinMessageLength, cfg.MinMessageLength)
	}
	if cfg.SendConfirmation {
		t.Fatal("expected confirmations disabled by default")
	}
	if cfg.AWSRegion != "us-east-1" {
		t.Fatalf("expected default region, got %s", cfg.AWSRegion)
	}
	if cfg.ExposeErrors() {
		t.Fatal("production must not expose error detail")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "Development")
	t.Setenv("DYNAMODB_TABLE", "contact-leads")
	t.Setenv("SENDER_EMAIL", "noreply@example.com")
	t.Setenv("RECIPIENT_EMAIL", "ops@example.com")
	t.Setenv("CORS_ORIGIN", "https://example.com")
	t.Setenv("EMAIL_PROVIDER", " SendGrid ")
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	t.Setenv("MIN_MESSAGE_LENGTH", "1")
	t.Setenv("SEND_CONFIRMATION", "true")

	cfg := Load()
	if cfg.DynamoDBTable != "contact-leads" {
		t.Fatalf("expected table override, got %s", cfg.DynamoDBTable)
	}
	if cfg.CORSOrigin != "https://example.com" {
		t.Fatalf("expected CORS override, got %s", cfg.CORSOrigin)
	}
	if cfg.EmailProvider != EmailProviderSendGrid {
		t.Fatalf("expected sendgrid provider, got %q", cfg.EmailProvider)
	}
	if !cfg.ExposeErrors() {
		t.Fatal("development should expose error detail")
	}
	policy := cfg.Policy()
	if policy.MinMessageLength != 1 || !policy.SendConfirmation {
		t.Fatalf("unexpected policy %+v", policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIN_MESSAGE_LENGTH", "ten")
	t.Setenv("SEND_CONFIRMATION", "maybe")

	cfg := Load()
	if cfg.MinMessageLength != leads.DefaultMinMessageLength || cfg.SendConfirmation {
		t.Fatalf("expected defaults for malformed values, got %d/%v", cfg.MinMessageLength, cfg.SendConfirmation)
	}
}

func TestValidateReportsEveryMissingSetting(t *testing.T) {
	clearEnv(t)
	err := Load().Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"RECIPIENT_EMAIL", "DYNAMODB_TABLE", "SENDER_EMAIL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %q", want, err)
		}
	}
}

func TestValidateLocalProviders(t *testing.T) {
	cfg := &Config{
		RecipientEmail: "ops@example.com",
		LeadStore:      LeadStoreMemory,
		EmailProvider:  EmailProviderLog,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory store + log provider need no AWS settings, got %v", err)
	}

	cfg.EmailProvider = "pigeon"
	cfg.LeadStore = "postgres"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "pigeon") || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected unsupported provider/store errors, got %v", err)
	}
}

func TestValidateSendGridNeedsKey(t *testing.T) {
	cfg := &Config{
		RecipientEmail: "ops@example.com",
		SenderEmail:    "noreply@example.com",
		LeadStore:      LeadStoreMemory,
		EmailProvider:  EmailProviderSendGrid,
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SENDGRID_API_KEY") {
		t.Fatalf("expected missing sendgrid key error, got %v", err)
	}
}
