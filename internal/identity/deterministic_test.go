package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	first := ArtifactUUID("en/antrag/index.html")
	second := ArtifactUUID("/en/antrag/index.html/")
	if first != second {
		t.Fatalf("expected slash-insensitive ids, got %s and %s", first, second)
	}
	if first == uuid.Nil {
		t.Fatalf("expected non-nil id")
	}
	if ArtifactUUID("en/index.html") == first {
		t.Fatalf("expected distinct targets to yield distinct ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}

func TestTranslationUUIDNormalisesLanguage(t *testing.T) {
	if TranslationUUID("EN", "antrag") != TranslationUUID("en", "antrag") {
		t.Fatalf("expected case-insensitive language")
	}
	if TranslationUUID("en", "antrag") == ArtifactUUID("en/antrag") {
		t.Fatalf("expected kinds not to collide")
	}
}
