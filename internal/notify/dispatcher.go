package notify

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/creerweb/contact-form/internal/leads"
	"github.com/creerweb/contact-form/internal/observability/metrics"
	"github.com/creerweb/contact-form/pkg/logging"
)

var notifyTracer = otel.Tracer("contactform.internal.notify")

// Kind names which of the two emails an attempt was for.
type Kind string

const (
	KindStakeholder  Kind = "stakeholder"
	KindConfirmation Kind = "confirmation"
)

// NotificationError records a failed email attempt. It never reaches the caller.
type NotificationError struct {
	Kind Kind
	To   string
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify: %s email to %s: %v", e.Kind, e.To, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// DispatchResult reports which emails went out.
type DispatchResult struct {
	NotificationSent bool
	ConfirmationSent bool
}

// DispatcherConfig holds addressing for outbound notifications.
type DispatcherConfig struct {
	// RecipientEmail is the operator inbox for new-lead notifications.
	RecipientEmail string
	// SiteName appears in email footers.
	SiteName string
	Metrics  *metrics.ContactMetrics
}

// Dispatcher sends the stakeholder notification and optional confirmation for a lead.
type Dispatcher struct {
	sender  EmailSender
	cfg     DispatcherConfig
	logger  *logging.Logger
	metrics *metrics.ContactMetrics
}

// NewDispatcher wires a sender to the configured recipients.
func NewDispatcher(sender EmailSender, cfg DispatcherConfig, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sender:  sender,
		cfg:     cfg,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Dispatch attempts both emails independently and returns once both have resolved.
// Failures are logged and reflected in the result, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, lead *leads.Lead, sendConfirmation bool) DispatchResult {
	ctx, span := notifyTracer.Start(ctx, "notify.dispatch")
	defer span.End()

	var result DispatchResult
	if lead == nil {
		return result
	}
	span.SetAttributes(
		attribute.String("lead.id", lead.LeadID),
		attribute.Bool("notify.confirmation_enabled", sendConfirmation),
	)

	var g errgroup.Group
	g.Go(func() error {
		result.NotificationSent = d.attempt(ctx, KindStakeholder, lead)
		return nil
	})
	if sendConfirmation {
		g.Go(func() error {
			result.ConfirmationSent = d.attempt(ctx, KindConfirmation, lead)
			return nil
		})
	}
	_ = g.Wait()

	span.SetAttributes(
		attribute.Bool("notify.notification_sent", result.NotificationSent),
		attribute.Bool("notify.confirmation_sent", result.ConfirmationSent),
	)
	return result
}

func (d *Dispatcher) attempt(ctx context.Context, kind Kind, lead *leads.Lead) bool {
	ctx, span := notifyTracer.Start(ctx, "notify.send")
	defer span.End()
	span.SetAttributes(attribute.String("notify.kind", string(kind)))

	msg, err := d.buildMessage(kind, lead)
	if err == nil {
		err = d.send(ctx, msg)
	}
	d.metrics.ObserveNotification(string(kind), err)
	if err != nil {
		nerr := &NotificationError{Kind: kind, To: msg.To, Err: err}
		span.RecordError(nerr)
		span.SetStatus(codes.Error, "send failed")
		d.logger.Error("notification email failed, lead is still saved", "error", nerr, "kind", string(kind), "lead_id", lead.LeadID)
		return false
	}
	d.logger.Info("notification email sent", "kind", string(kind), "lead_id", lead.LeadID)
	return true
}

func (d *Dispatcher) send(ctx context.Context, msg EmailMessage) (err error) {
	if d.sender == nil {
		return fmt.Errorf("notify: email sender not configured")
	}
	if msg.To == "" {
		return fmt.Errorf("notify: recipient address required")
	}
	// Transport panics count as send failures.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: sender panicked: %v", r)
		}
	}()
	return d.sender.Send(ctx, msg)
}

func (d *Dispatcher) buildMessage(kind Kind, lead *leads.Lead) (EmailMessage, error) {
	switch kind {
	case KindStakeholder:
		rendered, err := RenderStakeholderEmail(lead, d.cfg.SiteName)
		if err != nil {
			return EmailMessage{To: d.cfg.RecipientEmail}, err
		}
		return EmailMessage{
			To:      d.cfg.RecipientEmail,
			ReplyTo: lead.Email,
			Subject: rendered.Subject,
			Body:    rendered.Text,
			HTML:    rendered.HTML,
		}, nil
	case KindConfirmation:
		rendered, err := RenderConfirmationEmail(lead, d.cfg.SiteName)
		if err != nil {
			return EmailMessage{To: lead.Email}, err
		}
		return EmailMessage{
			To:      lead.Email,
			ToName:  lead.Name,
			ReplyTo: d.cfg.RecipientEmail,
			Subject: rendered.Subject,
			Body:    rendered.Text,
			HTML:    rendered.HTML,
		}, nil
	default:
		return EmailMessage{}, fmt.Errorf("notify: unknown email kind %q", kind)
	}
}
