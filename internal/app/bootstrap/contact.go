package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/creerweb/contact-form/cmd/mainconfig"
	appconfig "github.com/creerweb/contact-form/internal/config"
	"github.com/creerweb/contact-form/internal/contactform"
	"github.com/creerweb/contact-form/internal/leads"
	"github.com/creerweb/contact-form/internal/notify"
	"github.com/creerweb/contact-form/internal/observability/metrics"
	"github.com/creerweb/contact-form/pkg/logging"
)

// ContactApp is the wired handler plus the collaborators binaries may need.
type ContactApp struct {
	Handler *contactform.Handler
	Store   leads.Repository
	Sender  notify.EmailSender
	Metrics *metrics.ContactMetrics
}

// awsLoader loads the AWS config at most once, and only if a component needs it.
type awsLoader struct {
	ctx  context.Context
	cfg  *appconfig.Config
	once sync.Once
	aws  aws.Config
	err  error
}

func (l *awsLoader) load() (aws.Config, error) {
	l.once.Do(func() {
		l.aws, l.err = mainconfig.LoadAWSConfig(l.ctx, l.cfg)
		if l.err != nil {
			l.err = fmt.Errorf("bootstrap: load aws config: %w", l.err)
		}
	})
	return l.aws, l.err
}

// BuildContactApp wires the store, email transport, dispatcher and handler from config.
func BuildContactApp(ctx context.Context, cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) (*ContactApp, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loader := &awsLoader{ctx: ctx, cfg: cfg}

	store, err := buildLeadStore(cfg, loader, logger)
	if err != nil {
		return nil, err
	}
	sender, err := buildEmailSender(cfg, loader, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.NewContactMetrics(reg)
	dispatcher := notify.NewDispatcher(sender, notify.DispatcherConfig{
		RecipientEmail: cfg.RecipientEmail,
		SiteName:       cfg.SiteName,
		Metrics:        m,
	}, logger)

	handler := contactform.NewHandler(contactform.Dependencies{
		Store:    store,
		Notifier: dispatcher,
		Logger:   logger,
		Metrics:  m,
	}, contactform.Options{
		Policy:         cfg.Policy(),
		CORSOrigin:     cfg.CORSOrigin,
		RecipientEmail: cfg.RecipientEmail,
		ExposeErrors:   cfg.ExposeErrors(),
	})

	logger.Info("contact form handler ready",
		"lead_store", cfg.LeadStore,
		"email_provider", cfg.EmailProvider,
		"send_confirmation", cfg.SendConfirmation,
		"min_message_length", cfg.MinMessageLength,
	)

	return &ContactApp{
		Handler: handler,
		Store:   store,
		Sender:  sender,
		Metrics: m,
	}, nil
}

func buildLeadStore(cfg *appconfig.Config, loader *awsLoader, logger *logging.Logger) (leads.Repository, error) {
	switch cfg.LeadStore {
	case appconfig.LeadStoreMemory:
		logger.Warn("using in-memory lead store; leads are lost on restart")
		return leads.NewInMemoryRepository(), nil
	case appconfig.LeadStoreDynamoDB:
		awsCfg, err := loader.load()
		if err != nil {
			return nil, err
		}
		return leads.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unsupported lead store %q", cfg.LeadStore)
	}
}

func buildEmailSender(cfg *appconfig.Config, loader *awsLoader, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case appconfig.EmailProviderLog:
		logger.Warn("email provider is log-only; no emails will be delivered")
		return notify.NewStubEmailSender(logger), nil
	case appconfig.EmailProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SenderEmail,
			FromName:  cfg.SenderName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: sendgrid api key required")
		}
		return sender, nil
	case appconfig.EmailProviderSES:
		awsCfg, err := loader.load()
		if err != nil {
			return nil, err
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SenderEmail,
			FromName:  cfg.SenderName,
		}, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unsupported email provider %q", cfg.EmailProvider)
	}
}
