package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents provides helper methods for tracing blog operations.
// These sit above the HTTP and DB spans (e.g. "a post was created").
type BusinessEvents struct {
	tracer trace.Tracer
}

// NewBusinessEvents creates a new business events tracer
func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{
		tracer: otel.Tracer("business-events"),
	}
}

// ============================================================================
// LISTINGS
// ============================================================================

// ListingAttrs describes a post listing request
type ListingAttrs struct {
	Listing      string // "index", "category", "profile"
	Page         int
	ApplyFilters bool
}

// TraceListPosts creates a span for a post listing. Callers add
// listing.item_count once the page is loaded.
func (be *BusinessEvents) TraceListPosts(ctx context.Context, attrs ListingAttrs) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "blog.list_posts",
		trace.WithAttributes(
			attribute.String("listing.type", attrs.Listing),
			attribute.Int("listing.page", attrs.Page),
			attribute.Bool("listing.apply_filters", attrs.ApplyFilters),
		),
	)
}

// ============================================================================
// POSTS AND COMMENTS
// ============================================================================

// TraceCreatePost creates a span for post creation
func (be *BusinessEvents) TraceCreatePost(ctx context.Context, authorID uint, scheduled bool) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "blog.create_post",
		trace.WithAttributes(
			attribute.Int64("post.author_id", int64(authorID)),
			attribute.Bool("post.scheduled", scheduled),
		),
	)
}

// TraceDeletePost creates a span for post deletion
func (be *BusinessEvents) TraceDeletePost(ctx context.Context, postID uint) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "blog.delete_post",
		trace.WithAttributes(
			attribute.Int64("post.id", int64(postID)),
		),
	)
}

// TraceComment creates a span for a comment operation ("create", "edit", "delete")
func (be *BusinessEvents) TraceComment(ctx context.Context, operation string, postID uint) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "blog.comment."+operation,
		trace.WithAttributes(
			attribute.String("comment.operation", operation),
			attribute.Int64("post.id", int64(postID)),
		),
	)
}

// ============================================================================
// EXTERNAL SERVICES
// ============================================================================

// TraceExternalCall creates a span for calls to S3, SES or other external services
func (be *BusinessEvents) TraceExternalCall(ctx context.Context, service string, operation string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "external."+service+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("external.service", service),
			attribute.String("external.operation", operation),
		),
	)
}

// RecordError marks a span as failed
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
}

// ============================================================================
// HELPER: Global instance for convenient access
// ============================================================================

var globalBusinessEvents *BusinessEvents

// GetBusinessEvents returns the global business events tracer. Spans are
// no-ops until InitTracer installs a provider.
func GetBusinessEvents() *BusinessEvents {
	if globalBusinessEvents == nil {
		globalBusinessEvents = NewBusinessEvents()
	}
	return globalBusinessEvents
}
