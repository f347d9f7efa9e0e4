package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/creerweb/contact-form/internal/config"
	"github.com/creerweb/contact-form/pkg/logging"
)

func TestNewServerRoutes(t *testing.T) {
	cfg := &appconfig.Config{
		Env:              "local",
		Port:             "9090",
		RecipientEmail:   "ops@example.com",
		CORSOrigin:       "*",
		SiteName:         "Example.com",
		LeadStore:        appconfig.LeadStoreMemory,
		EmailProvider:    appconfig.EmailProviderLog,
		MinMessageLength: 10,
	}

	srv, err := newServer(context.Background(), cfg, logging.NewWithWriter("error", io.Discard))
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	if srv.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %s", srv.Addr)
	}

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/contact", "application/json", strings.NewReader(`{"name":"J"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid submission, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(raw), `contactform_intake_submissions_total{outcome="rejected"} 1`) {
		t.Fatalf("expected rejected submission counted, got:\n%s", raw)
	}
	if !strings.Contains(string(raw), "go_goroutines") {
		t.Fatal("expected runtime collectors on the dev registry")
	}
}

func TestNewServerRejectsBadConfig(t *testing.T) {
	_, err := newServer(context.Background(), &appconfig.Config{LeadStore: "postgres"}, logging.NewWithWriter("error", io.Discard))
	if err == nil || !strings.Contains(err.Error(), "contact-devserver") {
		t.Fatalf("expected wrapped config error, got %v", err)
	}
}
