package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyPrefix = "go-templatefn:"

// UUID derives a deterministic UUID from key using go-hashid. Empty keys map to
// uuid.Nil. When hashid cannot produce an identifier the key is hashed with a
// name-based SHA1 UUID instead, so the result stays stable.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// FunctionUUID identifies a stored function definition by its normalized name.
func FunctionUUID(name string) uuid.UUID {
	return UUID(keyPrefix + "function:" + strings.ToLower(strings.TrimSpace(name)))
}
