// Package events drains the SIS change-event queue and routes each event to the
// roster operations of the institution that owns its term.
//
// An event is deleted once it has been applied or once it can never be applied
// (unknown type, unmappable term, disabled institution, nothing tracked, person
// gone). Any other failure leaves the event in the queue for the next poll.
//
// The dispatcher does not deduplicate. Replays are harmless because every
// operation checks the tracking ledger before mutating the LMS.
package events
