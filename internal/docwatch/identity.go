package docwatch

import (
	"fmt"
	"strings"
)

// NormalizeTitle collapses a title to its substantive text: trimmed,
// lowercased, inner whitespace runs folded to single spaces. Two titles
// differing only in whitespace or case normalize to the same string.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// Identity computes the deterministic content identity for a document: a
// digest over the normalized title and normalized source URL. Records that
// collide on identity are the same document.
func Identity(h Hasher, title, rawURL string) (string, error) {
	normURL, err := NormalizeURL(rawURL)
	if err != nil {
		// Untrusted pages produce unparseable hrefs; fall back to a trimmed
		// lowercase form so the identity stays deterministic.
		normURL = strings.ToLower(strings.TrimSpace(rawURL))
	}
	digest, err := h.Hash([]byte(NormalizeTitle(title) + "|" + normURL))
	if err != nil {
		return "", fmt.Errorf("hash identity: %w", err)
	}
	return digest, nil
}
