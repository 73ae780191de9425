package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"strings"

	waguard "github.com/sociovia/waguard"
)

// HashText returns a SHA256 hash of a text component.
func HashText(text string) string {
	h := sha256.New()
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// HashMediaURL returns a hash of a media URL for deduplication.
func HashMediaURL(url string) string {
	h := sha256.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// HashTemplate returns a content hash covering every part of a template that
// affects a check verdict. Two templates with the same hash produce the same
// outcome, so stores use it to skip redundant re-checks.
func HashTemplate(t waguard.Template) string {
	var b strings.Builder
	b.WriteString(string(t.Category))
	b.WriteByte(0)
	b.WriteString(t.Header)
	b.WriteByte(0)
	b.WriteString(t.Body)
	b.WriteByte(0)
	b.WriteString(t.Footer)
	for _, btn := range t.Buttons {
		b.WriteByte(0)
		b.WriteString(btn.Type)
		b.WriteByte(1)
		b.WriteString(btn.Text)
		b.WriteByte(1)
		b.WriteString(btn.URL)
	}
	if t.HeaderMediaURL != "" {
		b.WriteByte(0)
		b.WriteString(string(t.HeaderMediaType))
		b.WriteByte(1)
		b.WriteString(t.HeaderMediaURL)
	}
	return HashText(b.String())
}

// QuickHash returns a fast FNV-1a hash for internal use.
func QuickHash(data string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(data))
	return h.Sum64()
}

// TruncateHash returns a truncated hash for display purposes.
func TruncateHash(hash string, length int) string {
	if len(hash) <= length {
		return hash
	}
	return hash[:length]
}
