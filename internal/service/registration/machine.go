package registration

import "github.com/Alijeyrad/myvoice_backend/internal/repo"

// errorStep is the change to a sender's outstanding error record.
type errorStep struct {
	// save, when non-nil, replaces the record with this category.
	save *repo.ErrorType
	// clear deletes the record.
	clear bool
}

// nextErrorStep drives the per-sender error-correction state. failed is nil
// for a valid entry. A second identical failure clears the record so the
// following attempt is judged as a first failure again.
func nextErrorStep(prev *repo.ErrorType, failed *Field) errorStep {
	if failed == nil {
		return errorStep{clear: prev != nil}
	}
	cat := failed.ErrorType()
	if prev != nil && *prev == cat {
		return errorStep{clear: true}
	}
	return errorStep{save: &cat}
}
