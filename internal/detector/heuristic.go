// Package detector decides when a plain fetch must be retried through the
// headless renderer.
package detector

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Heuristic implements rule-based render escalation: tiny or empty bodies,
// single-page-app shells, script-heavy documents, and pages missing the
// content selectors the extractor depends on all trigger a render.
type Heuristic struct {
	MinBodyBytes     int
	ContentSelectors []string
}

// NewHeuristic creates a detector. A zero minBodyBytes picks a default, and
// empty selectors disable the selector check.
func NewHeuristic(minBodyBytes int, contentSelectors []string) *Heuristic {
	if minBodyBytes == 0 {
		minBodyBytes = 2048
	}
	return &Heuristic{MinBodyBytes: minBodyBytes, ContentSelectors: contentSelectors}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
}

// NeedsRender reports whether the body structurally under-delivers.
func (h *Heuristic) NeedsRender(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	if len(body) < h.MinBodyBytes && scriptDensityHigh(body) {
		return true
	}
	if len(h.ContentSelectors) > 0 && !h.hasContent(body) {
		return true
	}
	return false
}

func (h *Heuristic) hasContent(body []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	for _, sel := range h.ContentSelectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	scriptCoverage := 0
	searchPos := 0

	for {
		relativeStart := strings.Index(lower[searchPos:], openTag)
		if relativeStart == -1 {
			break
		}
		start := searchPos + relativeStart

		tagClose := strings.IndexByte(lower[start:], '>')
		if tagClose == -1 {
			// Treat the rest of the document as part of the malformed script.
			scriptCoverage += total - start
			break
		}
		contentStart := start + tagClose + 1

		relativeEnd := strings.Index(lower[contentStart:], closeTag)
		var nextSearch int
		if relativeEnd == -1 {
			// Script tag never closes; count the rest.
			nextSearch = total
		} else {
			nextSearch = contentStart + relativeEnd + len(closeTag)
		}

		scriptCoverage += nextSearch - start
		searchPos = nextSearch
	}

	if scriptCoverage == 0 {
		return false
	}
	return scriptCoverage*100/total >= 25
}
