package session

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

const (
	credentialPrefix = "cred-"
	anonymousPrefix  = "anon-"
	// identityHexLen keeps 128 bits of the SHA-256 digest.
	identityHexLen = 32
)

// DeriveClientID returns a deterministic identity for a credential, or a
// unique one when credential is empty.
func DeriveClientID(credential string) string {
	if credential == "" {
		return anonymousPrefix + uuid.NewString()
	}
	sum := sha256.Sum256([]byte(credential))
	return credentialPrefix + hex.EncodeToString(sum[:])[:identityHexLen]
}

// IsAnonymous reports whether id was generated for a client without a credential.
func IsAnonymous(id string) bool {
	return len(id) >= len(anonymousPrefix) && id[:len(anonymousPrefix)] == anonymousPrefix
}
