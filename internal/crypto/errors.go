package crypto

import "errors"

// Sentinel causes for decryption failures.
var (
	// ErrBlobFormat means the blob does not have exactly four
	// dot-separated segments.
	ErrBlobFormat = errors.New("invalid blob format")

	// ErrBlobEncoding means a blob segment is not valid base64.
	ErrBlobEncoding = errors.New("invalid blob encoding")

	// ErrAuthentication means the GCM tag check failed: wrong key or
	// tampered ciphertext.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidKey means the master key is not a 64-character hex string.
	ErrInvalidKey = errors.New("invalid master key")
)

// DecryptError is the single error category returned by Decrypt. Cause is
// one of the sentinels above or a generic error for unexpected failures;
// errors.Is reaches it through Unwrap.
type DecryptError struct {
	Cause error
}

func (e *DecryptError) Error() string {
	return "decrypt secret: " + e.Cause.Error()
}

func (e *DecryptError) Unwrap() error {
	return e.Cause
}
