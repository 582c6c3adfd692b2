package auditcontext

import "context"

type contextKey string

const (
	actorTypeKey contextKey = "audit_actor_type"
	actorIDKey   contextKey = "audit_actor_id"
	requestIDKey contextKey = "audit_request_id"
	ipAddressKey contextKey = "audit_ip_address"
	userAgentKey contextKey = "audit_user_agent"
	rentalIDKey  contextKey = "audit_rental_id"
	invoiceIDKey contextKey = "audit_invoice_id"
	jobRunIDKey  contextKey = "audit_job_run_id"
)

// WithActor records the acting principal for downstream audit writes.
func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	ctx = context.WithValue(ctx, actorTypeKey, actorType)
	return context.WithValue(ctx, actorIDKey, actorID)
}

func ActorFromContext(ctx context.Context) (string, string) {
	actorType, _ := ctx.Value(actorTypeKey).(string)
	actorID, _ := ctx.Value(actorIDKey).(string)
	return actorType, actorID
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipAddressKey, ip)
}

func IPAddressFromContext(ctx context.Context) string {
	value, _ := ctx.Value(ipAddressKey).(string)
	return value
}

func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentKey, userAgent)
}

func UserAgentFromContext(ctx context.Context) string {
	value, _ := ctx.Value(userAgentKey).(string)
	return value
}

func WithRentalID(ctx context.Context, rentalID string) context.Context {
	return context.WithValue(ctx, rentalIDKey, rentalID)
}

func RentalIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(rentalIDKey).(string)
	return value
}

func WithInvoiceID(ctx context.Context, invoiceID string) context.Context {
	return context.WithValue(ctx, invoiceIDKey, invoiceID)
}

func InvoiceIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(invoiceIDKey).(string)
	return value
}

func WithJobRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, jobRunIDKey, runID)
}

func JobRunIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(jobRunIDKey).(string)
	return value
}
