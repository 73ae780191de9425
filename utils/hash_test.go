package utils

import (
	"testing"

	waguard "github.com/sociovia/waguard"
)

func TestHashText(t *testing.T) {
	h1 := HashText("hello")
	h2 := HashText("hello")
	h3 := HashText("world")

	if h1 != h2 {
		t.Error("same input produced different hashes")
	}
	if h1 == h3 {
		t.Error("different inputs produced the same hash")
	}
	if len(h1) != 64 {
		t.Errorf("len(hash) = %d, want 64 hex chars", len(h1))
	}
}

func TestHashTemplate(t *testing.T) {
	base := waguard.Template{
		Name:     "order_update",
		Language: "en",
		Category: waguard.CategoryUtility,
		Body:     "Your order shipped.",
	}

	if HashTemplate(base) != HashTemplate(base) {
		t.Error("same template produced different hashes")
	}

	changedBody := base
	changedBody.Body = "Your order shipped!"
	if HashTemplate(base) == HashTemplate(changedBody) {
		t.Error("body change did not change the hash")
	}

	changedCategory := base
	changedCategory.Category = waguard.CategoryMarketing
	if HashTemplate(base) == HashTemplate(changedCategory) {
		t.Error("category change did not change the hash")
	}

	withButton := base
	withButton.Buttons = []waguard.Button{{Type: "URL", Text: "Track", URL: "https://example.com/tracking/1"}}
	if HashTemplate(base) == HashTemplate(withButton) {
		t.Error("adding a button did not change the hash")
	}

	withMedia := base
	withMedia.HeaderMediaType = waguard.MediaImage
	withMedia.HeaderMediaURL = "https://example.com/banner.png"
	if HashTemplate(base) == HashTemplate(withMedia) {
		t.Error("adding header media did not change the hash")
	}

	// Template name does not affect content identity.
	renamed := base
	renamed.Name = "order_update_v2"
	if HashTemplate(base) != HashTemplate(renamed) {
		t.Error("renaming the template changed the content hash")
	}
}

func TestHashTemplateFieldBoundaries(t *testing.T) {
	// Field separators must prevent text from one field bleeding into another.
	a := waguard.Template{Header: "ab", Body: "c"}
	b := waguard.Template{Header: "a", Body: "bc"}
	if HashTemplate(a) == HashTemplate(b) {
		t.Error("field boundary collision: different templates share a hash")
	}
}

func TestQuickHash(t *testing.T) {
	if QuickHash("abc") != QuickHash("abc") {
		t.Error("same input produced different quick hashes")
	}
	if QuickHash("abc") == QuickHash("abd") {
		t.Error("different inputs produced the same quick hash")
	}
}

func TestTruncateHash(t *testing.T) {
	tests := []struct {
		hash   string
		length int
		want   string
	}{
		{"abcdef123456", 6, "abcdef"},
		{"abc", 6, "abc"},
		{"", 6, ""},
	}

	for _, tt := range tests {
		if got := TruncateHash(tt.hash, tt.length); got != tt.want {
			t.Errorf("TruncateHash(%q, %d) = %q, want %q", tt.hash, tt.length, got, tt.want)
		}
	}
}
