package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-kind collisions (prefix by kind).
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

// ArtifactUUID identifies a generated file by its output path.
func ArtifactUUID(target string) uuid.UUID {
	return UUID("formulare:artifact:" + strings.Trim(strings.TrimSpace(target), "/"))
}

// TranslationUUID identifies a (language, form) translation.
func TranslationUUID(lang, form string) uuid.UUID {
	return UUID("formulare:translation:" + strings.ToLower(strings.TrimSpace(lang)) + ":" + strings.TrimSpace(form))
}
