package contactform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/creerweb/contact-form/internal/leads"
	"github.com/creerweb/contact-form/internal/notify"
	"github.com/creerweb/contact-form/internal/observability/metrics"
	"github.com/creerweb/contact-form/pkg/logging"
)

// Terminal outcomes, used as metric labels.
const (
	OutcomeAccepted         = "accepted"
	OutcomeRejected         = "rejected"
	OutcomeMalformed        = "malformed"
	OutcomeFailed           = "failed"
	OutcomePreflight        = "preflight"
	OutcomeMethodNotAllowed = "method_not_allowed"
)

const (
	phaseInitial      = "initial"
	phaseStatusUpdate = "status_update"
)

// Notifier sends the emails for a freshly stored lead.
type Notifier interface {
	Dispatch(ctx context.Context, lead *leads.Lead, sendConfirmation bool) notify.DispatchResult
}

// MalformedRequestError means the body was not a JSON object.
type MalformedRequestError struct {
	Err error
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("contactform: malformed request body: %v", e.Err)
}

func (e *MalformedRequestError) Unwrap() error {
	return e.Err
}

// Dependencies are the collaborators injected at cold start.
type Dependencies struct {
	Store    leads.Repository
	Notifier Notifier
	Logger   *logging.Logger
	Metrics  *metrics.ContactMetrics
	Tracer   trace.Tracer
	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

// Options control per-deployment behavior.
type Options struct {
	Policy         leads.Policy
	CORSOrigin     string
	RecipientEmail string
	// ExposeErrors adds error detail to 500 responses outside production.
	ExposeErrors bool
}

// Handler turns one API Gateway proxy request into a stored, notified lead.
type Handler struct {
	store    leads.Repository
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.ContactMetrics
	tracer   trace.Tracer
	clock    func() time.Time
	newID    func() string
	opts     Options
}

// NewHandler creates a contact form handler.
func NewHandler(deps Dependencies, opts Options) *Handler {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("contactform.internal.contactform")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = DefaultCORSOrigin
	}
	return &Handler{
		store:    deps.Store,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		clock:    deps.Clock,
		newID:    deps.NewID,
		opts:     opts,
	}
}

// Handle is the Lambda entrypoint. Every failure is expressed as an HTTP
// response, so the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	start := h.clock()
	method := strings.ToUpper(strings.TrimSpace(req.HTTPMethod))

	ctx, span := h.tracer.Start(ctx, "contactform.handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("aws.request_id", req.RequestContext.RequestID),
	)

	logger := h.logger.With("request_id", req.RequestContext.RequestID)
	logger.Debug("contact form request received", "method", method, "body_bytes", len(req.Body))

	outcome := OutcomeFailed
	defer func() {
		if r := recover(); r != nil {
			perr := fmt.Errorf("contactform: panic: %v", r)
			span.RecordError(perr)
			span.SetStatus(codes.Error, "panic")
			logger.Error("contact form handler panicked", "error", perr)
			outcome = OutcomeFailed
			resp, err = h.failed(perr), nil
		}
		span.SetAttributes(
			attribute.String("contactform.outcome", outcome),
			attribute.Int("http.status_code", resp.StatusCode),
		)
		h.metrics.ObserveSubmission(outcome, h.clock().Sub(start).Seconds())
	}()

	switch method {
	case http.MethodOptions:
		outcome = OutcomePreflight
		return h.preflight(), nil
	case http.MethodPost:
	default:
		outcome = OutcomeMethodNotAllowed
		return h.respond(http.StatusMethodNotAllowed, responseBody{Success: false, Message: msgMethodNotAllowed}), nil
	}

	sub, perr := parseSubmission(req)
	if perr != nil {
		outcome = OutcomeMalformed
		logger.Info("rejecting malformed contact form body", "error", perr)
		return h.respond(http.StatusBadRequest, responseBody{
			Success: false,
			Message: msgInvalidBody,
			Errors:  []string{"Request body must be a JSON object"},
		}), nil
	}

	if msgs := leads.Validate(sub, h.opts.Policy); len(msgs) > 0 {
		outcome = OutcomeRejected
		verr := &leads.ValidationError{Messages: msgs}
		logger.Info("contact form validation failed", "error", verr, "error_count", len(msgs))
		return h.respond(http.StatusBadRequest, responseBody{
			Success: false,
			Message: msgValidationFailed,
			Errors:  msgs,
		}), nil
	}

	lead := leads.Normalize(sub, h.clock(), h.newID)
	span.SetAttributes(attribute.String("lead.id", lead.LeadID))
	logger = logger.With("lead_id", lead.LeadID)

	if serr := h.save(ctx, lead, phaseInitial); serr != nil {
		span.RecordError(serr)
		span.SetStatus(codes.Error, "initial save failed")
		logger.Error("failed to save lead", "error", serr)
		return h.failed(serr), nil
	}

	result := h.dispatch(ctx, lead)
	lead.EmailSent = result.NotificationSent
	lead.ConfirmationSent = result.ConfirmationSent

	// The lead is already durable; a failed flag update is logged, not surfaced.
	if serr := h.save(ctx, lead, phaseStatusUpdate); serr != nil {
		span.RecordError(serr)
		logger.Error("failed to record notification status, lead was saved", "error", serr,
			"email_sent", lead.EmailSent, "confirmation_sent", lead.ConfirmationSent)
	}

	outcome = OutcomeAccepted
	logger.Info("lead accepted", "email_sent", lead.EmailSent, "confirmation_sent", lead.ConfirmationSent)
	return h.respond(http.StatusOK, responseBody{
		Success: true,
		Message: msgAccepted,
		LeadID:  lead.LeadID,
	}), nil
}

func (h *Handler) save(ctx context.Context, lead *leads.Lead, phase string) error {
	if h.store == nil {
		err := &leads.StorageError{Op: "save", LeadID: lead.LeadID, Err: errors.New("lead store not configured")}
		h.metrics.ObserveStoreWrite(phase, err)
		return err
	}
	err := h.store.Save(ctx, lead)
	if err != nil && !leads.IsStorageError(err) {
		err = &leads.StorageError{Op: "save", LeadID: lead.LeadID, Err: err}
	}
	h.metrics.ObserveStoreWrite(phase, err)
	return err
}

func (h *Handler) dispatch(ctx context.Context, lead *leads.Lead) notify.DispatchResult {
	if h.notifier == nil {
		h.logger.Warn("no notifier configured, skipping emails", "lead_id", lead.LeadID)
		return notify.DispatchResult{}
	}
	return h.notifier.Dispatch(ctx, lead, h.opts.Policy.SendConfirmation)
}

func parseSubmission(req events.APIGatewayProxyRequest) (leads.Submission, error) {
	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return leads.Submission{}, &MalformedRequestError{Err: fmt.Errorf("decode base64: %w", err)}
		}
		raw = decoded
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return leads.Submission{}, &MalformedRequestError{Err: errors.New("empty body")}
	}
	if raw[0] != '{' {
		return leads.Submission{}, &MalformedRequestError{Err: errors.New("body is not a JSON object")}
	}

	var sub leads.Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return leads.Submission{}, &MalformedRequestError{Err: err}
	}
	return sub, nil
}
