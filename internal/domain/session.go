package domain

// Session is the identity resolved for a request, whether it arrived
// through the session cookie or a bearer API key. Both paths produce the
// same shape so the authorization checks downstream are shared.
type Session struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
