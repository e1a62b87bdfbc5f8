package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxClaims    = "auth.claims"
	CtxEmail     = "auth.email"
)

const (
	MsgUnauthorized = "Unauthorized access"
	MsgForbidden    = "Forbidden access"
)
