// Package devserver runs the contact form Lambda handler behind a local HTTP server.
package devserver

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/creerweb/contact-form/internal/http/middleware"
	"github.com/creerweb/contact-form/pkg/logging"
)

// ContactPath is where the form posts, matching the API Gateway route.
const ContactPath = "/contact"

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("devserver: request body exceeds 1MiB")

// ProxyHandler is the Lambda entrypoint signature the dev server adapts.
type ProxyHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewRouter serves the handler on /contact, with /health and optionally /metrics.
func NewRouter(handler ProxyHandler, metricsHandler http.Handler, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Method checks stay in the handler so 405s carry the same JSON body as in Lambda.
	r.HandleFunc(ContactPath, proxy(handler, logger))
	return r
}

func proxy(handler ProxyHandler, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := toProxyRequest(r)
		if err != nil {
			http.Error(w, "request body too large or unreadable", http.StatusBadRequest)
			return
		}
		resp, err := handler(r.Context(), req)
		if err != nil {
			logger.Error("contact handler returned error", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		writeProxyResponse(w, resp, logger)
	}
}

func toProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	if len(raw) > maxBodyBytes {
		return events.APIGatewayProxyRequest{}, errBodyTooLarge
	}

	req := events.APIGatewayProxyRequest{
		Resource:                        ContactPath,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         map[string]string{},
		MultiValueHeaders:               map[string][]string{},
		QueryStringParameters:           map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetReqID(r.Context()),
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity:   events.APIGatewayRequestIdentity{SourceIP: r.RemoteAddr},
		},
	}
	for key, values := range r.Header {
		req.Headers[key] = strings.Join(values, ",")
		req.MultiValueHeaders[key] = values
	}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			req.QueryStringParameters[key] = values[len(values)-1]
		}
		req.MultiValueQueryStringParameters[key] = values
	}
	if utf8.Valid(raw) {
		req.Body = string(raw)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(raw)
		req.IsBase64Encoded = true
	}
	return req, nil
}

func writeProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse, logger *logging.Logger) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	for key, values := range resp.MultiValueHeaders {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			logger.Error("invalid base64 response body", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		body = decoded
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
