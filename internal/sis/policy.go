package sis

import "fmt"

// LookupPolicy decides how a tracked-section lookup treats zero or several rows
type LookupPolicy int

const (
	// PolicyStrict fails on zero rows and on duplicate rows
	PolicyStrict LookupPolicy = iota
	// PolicyTolerateDuplicates takes the first row when several exist
	PolicyTolerateDuplicates
	// PolicyTolerateUntracked returns nil without error when no row exists
	PolicyTolerateUntracked
)

func (p LookupPolicy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyTolerateDuplicates:
		return "tolerate-duplicates"
	case PolicyTolerateUntracked:
		return "tolerate-untracked"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ResolveTrackedSection applies policy to the ledger rows found for one (term, CRN).
// Rows must be ordered oldest first.
func ResolveTrackedSection(rows []TrackedSection, policy LookupPolicy) (*TrackedSection, error) {
	switch {
	case len(rows) == 1:
		return &rows[0], nil
	case len(rows) > 1:
		if policy == PolicyTolerateDuplicates {
			return &rows[0], nil
		}
		return nil, fmt.Errorf("%w: %d rows for %s/%s", ErrDuplicateSections, len(rows), rows[0].Term, rows[0].CRN)
	default:
		if policy == PolicyTolerateUntracked {
			return nil, nil
		}
		return nil, ErrSectionNotTracked
	}
}
