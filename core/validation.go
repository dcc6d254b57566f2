package core

import "strings"

// ValidateRecord checks a record's domain invariants.
func ValidateRecord(r *Record) error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if r.DupCount < 1 {
		return ErrInvalidDupCount
	}
	return nil
}

// ValidateAligned verifies that a parallel array has exactly one row per
// record. Every stage output passes through this check before it is used
// or persisted.
func ValidateAligned(records []*Record, rows int) error {
	if rows != len(records) {
		return ErrRowMismatch
	}
	return nil
}
