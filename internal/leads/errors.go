package leads

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilLead is returned when a store is asked to save nothing.
var ErrNilLead = errors.New("leads: lead cannot be nil")

// ErrMissingLeadID is returned when a lead has no key.
var ErrMissingLeadID = errors.New("leads: leadId required")

// ValidationError carries every rule a submission broke.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "leads: validation failed: " + strings.Join(e.Messages, "; ")
}

// StorageError wraps a failed write to the lead store.
type StorageError struct {
	Op     string
	LeadID string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("leads: %s lead %s: %v", e.Op, e.LeadID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is or wraps a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
