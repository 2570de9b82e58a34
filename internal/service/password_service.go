package service

// PasswordService hashes and verifies passwords with a salted adaptive KDF.
// The encoded digest carries its own parameters so the policy can change
// without invalidating stored hashes.
type PasswordService interface {
	Hash(password string) (encoded string, err error)
	// Verify reports whether the password matches and whether the stored
	// digest was produced under an older policy and should be rehashed.
	Verify(password, encoded string) (ok, rehashNeeded bool)
}
