package shared

import (
	"context"
	"log/slog"

	"erp/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, before, after any) error
}

// Audit records a change made by the caller. Failures are logged and never
// fail the request.
func Audit(ctx context.Context, auditor Auditor, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	actor := ""
	if user, ok := middleware.GetUser(ctx); ok {
		actor = user.Subject
	}
	reqID := middleware.GetRequestID(ctx)
	if err := auditor.Record(ctx, actor, action, entityType, entityID, reqID, before, after); err != nil {
		slog.Warn("audit record failed", "requestId", reqID, "action", action, "entityId", entityID, "err", err)
	}
}
