package sis

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSectionNotTracked is returned when no ledger row exists for a section
	ErrSectionNotTracked = errors.New("section is not tracked")

	// ErrEnrollmentNotTracked is returned when no single ledger row exists for an enrollment
	ErrEnrollmentNotTracked = errors.New("enrollment is not tracked")

	// ErrDuplicateSections is returned when more than one ledger row exists for a section
	ErrDuplicateSections = errors.New("section is tracked more than once")

	// ErrAlreadyTracked is returned when a ledger insert violates uniqueness
	ErrAlreadyTracked = errors.New("already tracked")

	// ErrPersonNotFound is returned when a person lookup matches no row
	ErrPersonNotFound = errors.New("person not found")

	// ErrAmbiguousPerson is returned when a person lookup matches more than one row
	ErrAmbiguousPerson = errors.New("person lookup is ambiguous")

	// ErrSectionNotFound is returned when the SIS has no such section
	ErrSectionNotFound = errors.New("section not found")
)

const uniqueViolation = "23505"

// IsNotTracked reports whether err means the entity was never mirrored
func IsNotTracked(err error) bool {
	return errors.Is(err, ErrSectionNotTracked) || errors.Is(err, ErrEnrollmentNotTracked)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
