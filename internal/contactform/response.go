package contactform

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

const (
	allowHeaders = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"
	allowMethods = "POST,OPTIONS"

	// DefaultCORSOrigin allows any origin.
	DefaultCORSOrigin = "*"

	msgAccepted         = "Thank you for contacting us! We'll get back to you soon."
	msgValidationFailed = "Validation failed"
	msgInvalidBody      = "Invalid request body"
	msgMethodNotAllowed = "Method not allowed"
	msgFailedPrefix     = "An error occurred. Please try again or email us directly at "
)

type responseBody struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	LeadID  string   `json:"leadId,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func corsHeaders(origin string) map[string]string {
	if origin == "" {
		origin = DefaultCORSOrigin
	}
	return map[string]string{
		"Access-Control-Allow-Origin":  origin,
		"Access-Control-Allow-Headers": allowHeaders,
		"Access-Control-Allow-Methods": allowMethods,
		"Content-Type":                 "application/json",
	}
}

func (h *Handler) preflight() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    corsHeaders(h.opts.CORSOrigin),
		Body:       "",
	}
}

func (h *Handler) respond(status int, body responseBody) events.APIGatewayProxyResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		// responseBody only holds strings and bools.
		encoded = []byte(`{"success":false}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(h.opts.CORSOrigin),
		Body:       string(encoded),
	}
}

func (h *Handler) failed(err error) events.APIGatewayProxyResponse {
	body := responseBody{
		Success: false,
		Message: msgFailedPrefix + h.opts.RecipientEmail,
	}
	if h.opts.ExposeErrors && err != nil {
		body.Error = err.Error()
	}
	return h.respond(http.StatusInternalServerError, body)
}
