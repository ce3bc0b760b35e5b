package ports

// TokenService issues and verifies signed session tokens binding a user id
// and an absolute expiry.
type TokenService interface {
	// Issue signs a token for the user id with the configured time-to-live.
	Issue(userID string) (string, error)
	// Verify returns the subject user id when the signature is valid and the
	// expiry has not passed. Malformed, forged, or expired tokens yield
	// ok=false: an absent identity, never an error.
	Verify(token string) (userID string, ok bool)
}
