package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-portal"

// UUID derives a deterministic UUID from key using go-hashid, falling back to
// a SHA1 name based UUID. Keys must be prefixed per entity type.
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

// LegacyItemUUID is the id of an item imported from the legacy snapshot. The
// same legacy record always maps to the same id, so a repeated import of a
// partition collides on the primary key instead of duplicating rows.
func LegacyItemUUID(kind, locale, legacyKey string) uuid.UUID {
	return UUID(strings.Join([]string{
		namespace,
		"item",
		strings.ToLower(strings.TrimSpace(kind)),
		strings.ToLower(strings.TrimSpace(locale)),
		strings.TrimSpace(legacyKey),
	}, ":"))
}

// SettingsUUID is the id of the per-locale settings text record.
func SettingsUUID(locale string) uuid.UUID {
	return UUID(namespace + ":settings:" + strings.ToLower(strings.TrimSpace(locale)))
}

// PresentationUUID is the id of the shared presentation settings record.
func PresentationUUID() uuid.UUID {
	return UUID(namespace + ":settings:presentation")
}

// DictionaryUUID is the id of a locale's translation dictionary.
func DictionaryUUID(locale string) uuid.UUID {
	return UUID(namespace + ":dictionary:" + strings.ToLower(strings.TrimSpace(locale)))
}
