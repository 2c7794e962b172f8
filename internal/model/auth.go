package model

// AuthContext carries the authenticated principal through a request.
// It is resolved once by the auth middleware from a verified bearer token and
// injected into the request context.
type AuthContext struct {
	UserID   string
	Username string
}
