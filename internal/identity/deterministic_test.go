package identity_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/identity"
)

func TestLegacyItemUUIDIsStable(t *testing.T) {
	first := identity.LegacyItemUUID("activity", "bs", "12")
	second := identity.LegacyItemUUID(" Activity ", "BS", "12")
	if first == uuid.Nil || first != second {
		t.Fatalf("expected stable non-nil id, got %s and %s", first, second)
	}
	if other := identity.LegacyItemUUID("activity", "en", "12"); other == first {
		t.Fatalf("locale must be part of the key")
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if identity.UUID("  ") != uuid.Nil {
		t.Fatalf("blank key should map to uuid.Nil")
	}
}

func TestSettingsIDsDiffer(t *testing.T) {
	if identity.SettingsUUID("bs") == identity.SettingsUUID("en") {
		t.Fatalf("settings ids must differ per locale")
	}
	if identity.PresentationUUID() == identity.SettingsUUID("bs") {
		t.Fatalf("presentation id must differ from text ids")
	}
}
