package ports

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports false on mismatch and an error only for a malformed hash.
	Verify(plaintext, hash string) (bool, error)
}

// TokenService issues and verifies stateless bearer tokens.
type TokenService interface {
	Issue(subjectID string) (string, error)
	// Verify returns the subject id or a *domain.TokenError.
	Verify(token string) (string, error)
}
