// Package otel provides OpenTelemetry span helpers shared by the sync components.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys used across roster sync spans
const (
	AttrInstitution = attribute.Key("roster.institution")
	AttrTerm        = attribute.Key("roster.term")
	AttrCRN         = attribute.Key("roster.crn")
	AttrPersonID    = attribute.Key("roster.person_id")
	AttrCourseID    = attribute.Key("roster.course_id")
	AttrEventID     = attribute.Key("roster.event.id")
	AttrEventType   = attribute.Key("roster.event.type")
	AttrResultCount = attribute.Key("result.count")
)

// StartSpan starts a span on tracer. A nil tracer yields a no-op span so that
// ending it never ends the caller's span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}

// SectionAttributes returns the attributes identifying a section
func SectionAttributes(term, crn string) trace.SpanStartEventOption {
	return trace.WithAttributes(AttrTerm.String(term), AttrCRN.String(crn))
}

// RecordError records err on span and marks it failed.
// The status description stays generic so SQL or URLs do not leak into trace status.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
