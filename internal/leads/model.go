package leads

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a lead.
type Status string

// StatusNew is the only state the intake flow assigns.
const StatusNew Status = "new"

// SourceWebsiteContactForm identifies leads captured by the site contact form.
const SourceWebsiteContactForm = "website-contact-form"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Lead is one stored contact-form submission.
type Lead struct {
	LeadID           string  `dynamodbav:"leadId" json:"leadId"`
	Timestamp        string  `dynamodbav:"timestamp" json:"timestamp"`
	Name             string  `dynamodbav:"name" json:"name"`
	Email            string  `dynamodbav:"email" json:"email"`
	Phone            *string `dynamodbav:"phone" json:"phone"`
	Subject          string  `dynamodbav:"subject" json:"subject"`
	Message          string  `dynamodbav:"message" json:"message"`
	Status           Status  `dynamodbav:"status" json:"status"`
	Source           string  `dynamodbav:"source" json:"source"`
	EmailSent        bool    `dynamodbav:"emailSent" json:"emailSent"`
	ConfirmationSent bool    `dynamodbav:"confirmationSent" json:"confirmationSent"`
}

// HasPhone reports whether the submitter left a phone number.
func (l *Lead) HasPhone() bool {
	return l != nil && l.Phone != nil && *l.Phone != ""
}

// PhoneNumber returns the phone number or an empty string.
func (l *Lead) PhoneNumber() string {
	if !l.HasPhone() {
		return ""
	}
	return *l.Phone
}

// SubmittedAt parses the stored timestamp. The zero time is returned when it is malformed.
func (l *Lead) SubmittedAt() time.Time {
	ts, err := time.Parse(TimestampLayout, l.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Clone returns a deep copy so stores never alias caller memory.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	cp := *l
	if l.Phone != nil {
		phone := *l.Phone
		cp.Phone = &phone
	}
	return &cp
}

// Submission is the JSON payload posted by the contact form.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Normalize builds the canonical lead for a submission that passed Validate.
func Normalize(sub Submission, now time.Time, newID func() string) *Lead {
	if newID == nil {
		newID = uuid.NewString
	}

	var phone *string
	if p := strings.TrimSpace(sub.Phone); p != "" {
		phone = &p
	}

	return &Lead{
		LeadID:    newID(),
		Timestamp: now.UTC().Format(TimestampLayout),
		Name:      strings.TrimSpace(sub.Name),
		Email:     strings.ToLower(strings.TrimSpace(sub.Email)),
		Phone:     phone,
		Subject:   strings.TrimSpace(sub.Subject),
		Message:   strings.TrimSpace(sub.Message),
		Status:    StatusNew,
		Source:    SourceWebsiteContactForm,
	}
}

// NewLead normalizes a submission using the wall clock and a random UUID.
func NewLead(sub Submission) *Lead {
	return Normalize(sub, time.Now(), uuid.NewString)
}
