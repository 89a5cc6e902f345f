package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must namespace keys so unrelated identifiers cannot collide.
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

// DocumentSeed returns a stable seed for a document path, or a random one
// when the document has no path.
func DocumentSeed(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return UUID("geomap:document:" + trimmed).String()
	}
	return uuid.NewString()
}
