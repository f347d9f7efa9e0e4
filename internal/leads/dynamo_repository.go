package leads

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/creerweb/contact-form/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoRepository writes leads to a DynamoDB table keyed by leadId.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Repository = (*DynamoRepository)(nil)

// NewDynamoRepository builds a store backed by the provided DynamoDB client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("leads: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save puts the whole record without a condition, replacing any earlier version.
func (r *DynamoRepository) Save(ctx context.Context, lead *Lead) error {
	ctx, span := leadsTracer.Start(ctx, "leads.save")
	defer span.End()

	if lead == nil {
		return &StorageError{Op: "save", Err: ErrNilLead}
	}
	if lead.LeadID == "" {
		return &StorageError{Op: "save", Err: ErrMissingLeadID}
	}
	span.SetAttributes(
		attribute.String("lead.id", lead.LeadID),
		attribute.String("leads.store", "dynamodb"),
		attribute.String("aws.dynamodb.table", r.tableName),
	)

	item, err := attributevalue.MarshalMap(lead)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return &StorageError{Op: "marshal", LeadID: lead.LeadID, Err: err}
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put failed")
		r.logger.Error("leads: dynamodb put failed", "error", err, "lead_id", lead.LeadID, "table", r.tableName)
		return &StorageError{Op: "save", LeadID: lead.LeadID, Err: fmt.Errorf("put item: %w", err)}
	}

	r.logger.Info("lead saved to dynamodb", "lead_id", lead.LeadID, "email_sent", lead.EmailSent, "confirmation_sent", lead.ConfirmationSent)
	return nil
}
