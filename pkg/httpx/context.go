package httpx

import "context"

type ctxKey string

const (
	CtxKeyAccountID ctxKey = "account_id"
	CtxKeyClaims    ctxKey = "claims"
)

// AccountIDFromContext returns the authenticated account ID, if any.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyAccountID).(string)
	return id, ok && id != ""
}
