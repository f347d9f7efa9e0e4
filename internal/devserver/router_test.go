package devserver

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creerweb/contact-form/internal/contactform"
	"github.com/creerweb/contact-form/internal/leads"
	"github.com/creerweb/contact-form/internal/notify"
	"github.com/creerweb/contact-form/internal/observability/metrics"
	"github.com/creerweb/contact-form/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func TestRouterHealth(t *testing.T) {
	r := NewRouter(nil, nil, quietLogger())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouterAdaptsRequestAndResponse(t *testing.T) {
	var got events.APIGatewayProxyRequest
	handler := func(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		got = req
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusAccepted,
			Headers:    map[string]string{"Content-Type": "application/json", "X-Custom": "yes"},
			Body:       `{"success":true}`,
		}, nil
	}

	r := NewRouter(handler, nil, quietLogger())
	req := httptest.NewRequest(http.MethodPost, "/contact?ref=ad&ref=footer", strings.NewReader(`{"name":"Jane"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.MethodPost, got.HTTPMethod)
	assert.Equal(t, "/contact", got.Path)
	assert.Equal(t, `{"name":"Jane"}`, got.Body)
	assert.False(t, got.IsBase64Encoded)
	assert.Equal(t, "application/json", got.Headers["Content-Type"])
	assert.Equal(t, "footer", got.QueryStringParameters["ref"])
	assert.Equal(t, []string{"ad", "footer"}, got.MultiValueQueryStringParameters["ref"])
	assert.NotEmpty(t, got.RequestContext.RequestID)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Custom"))
	assert.Equal(t, `{"success":true}`, rec.Body.String())
}

func TestRouterEncodesBinaryBodies(t *testing.T) {
	raw := []byte{0xff, 0xfe, 0x00}
	var got events.APIGatewayProxyRequest
	handler := func(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		got = req
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}
	r := NewRouter(handler, nil, quietLogger())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(string(raw))))

	assert.True(t, got.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), got.Body)
}

func TestRouterHandlerErrorBecomes500(t *testing.T) {
	handler := func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, errors.New("boom")
	}
	r := NewRouter(handler, nil, quietLogger())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("{}")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouterServesContactHandlerEndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewContactMetrics(reg)
	store := leads.NewInMemoryRepository()
	logger := quietLogger()
	dispatcher := notify.NewDispatcher(notify.NewStubEmailSender(logger), notify.DispatcherConfig{
		RecipientEmail: "ops@example.com",
		SiteName:       "Example.com",
		Metrics:        m,
	}, logger)
	h := contactform.NewHandler(contactform.Dependencies{
		Store:    store,
		Notifier: dispatcher,
		Logger:   logger,
		Metrics:  m,
	}, contactform.Options{RecipientEmail: "ops@example.com"})

	r := NewRouter(h.Handle, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/contact", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	body := `{"name":"Jane Doe","email":"jane@example.com","subject":"Quote","message":"Please send me a quote."}`
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"leadId"`)
	assert.Equal(t, 1, store.Len())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `contactform_intake_submissions_total{outcome="accepted"} 1`)
}
