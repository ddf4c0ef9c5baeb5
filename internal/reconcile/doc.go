// Package reconcile compares the complete rosters of the SIS and the LMS for the
// current terms of an institution and repairs the drift through the roster
// operations.
//
// Matching is exact on (term, CRN, external id). A student who moved sections
// therefore reconciles as one drop and one add.
package reconcile
