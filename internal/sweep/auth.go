package sweep

import (
	"crypto/subtle"
	"strings"
)

// Decision is the outcome of authorizing a sweep trigger call.
type Decision int

const (
	Unauthorized Decision = iota
	Authorized
	// NoSecretConfigured means no secret is set for the endpoint at all; the
	// deployment has opted into unauthenticated triggers.
	NoSecretConfigured
)

// Authorize checks an Authorization header against the configured secrets.
// Empty secrets are ignored; with none configured the call is allowed and
// reported as NoSecretConfigured. Comparison is constant-time.
func Authorize(authorization string, secrets ...string) Decision {
	configured := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			configured = append(configured, s)
		}
	}
	if len(configured) == 0 {
		return NoSecretConfigured
	}

	token, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || token == "" {
		return Unauthorized
	}
	for _, s := range configured {
		if subtle.ConstantTimeCompare([]byte(token), []byte(s)) == 1 {
			return Authorized
		}
	}
	return Unauthorized
}
