// Package extractor parses company pages into document records.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

// sectionSelectors name the containers document lists usually live in.
var sectionSelectors = []string{
	".documents", ".document-list", ".files", ".file-list",
	".downloads", ".download-list", ".reports", ".report-list",
	"[class*=document]", "[class*=report]", "[class*=file]",
	"[id*=document]", "[id*=report]", "[id*=file]",
}

// SectionSelectors returns the selectors document containers are expected
// under. The render detector uses the same list, so a page is only accepted
// un-rendered when the markup the extractor scans for is actually present.
func SectionSelectors() []string {
	return append([]string(nil), sectionSelectors...)
}

var docExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}

// navTitles are link texts that never name a document.
var navTitles = map[string]struct{}{
	"home": {}, "back": {}, "next": {}, "previous": {},
}

var hrefFallback = regexp.MustCompile(`href=["']([^"']+\.(?:pdf|docx?|xlsx?|pptx?))["']`)

// Extractor turns fetched HTML into deduplicated document records. Three
// passes run in descending confidence: links carrying a document file
// extension, links inside document sections, then a raw regex sweep for
// hrefs goquery missed. The first record per content identity wins.
type Extractor struct {
	hasher docwatch.Hasher
	logger *zap.Logger
}

// New creates an Extractor.
func New(hasher docwatch.Hasher, logger *zap.Logger) (*Extractor, error) {
	if hasher == nil {
		return nil, fmt.Errorf("extractor: hasher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{hasher: hasher, logger: logger}, nil
}

// Extract parses body into document records. Relative hrefs are resolved
// against pageURL. Output order follows discovery order.
func (e *Extractor) Extract(company, pageURL string, body []byte) ([]docwatch.DocumentRecord, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var out []docwatch.DocumentRecord
	seen := make(map[string]struct{})
	seenURLs := make(map[string]struct{})

	add := func(title, href, context string) {
		title = strings.TrimSpace(title)
		if title == "" {
			return
		}
		if _, skip := navTitles[strings.ToLower(title)]; skip {
			return
		}
		abs := resolveHref(base, href)
		if abs == "" {
			return
		}
		seenURLs[normalizeKey(abs)] = struct{}{}

		id, hashErr := docwatch.Identity(e.hasher, title, abs)
		if hashErr != nil {
			e.logger.Warn("identity failed", zap.String("company", company), zap.Error(hashErr))
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		rec := docwatch.DocumentRecord{
			ID:      id,
			Title:   title,
			URL:     abs,
			Type:    ClassifyDocument(title, abs),
			Country: DetectCountry(title, abs),
		}
		if ts, found := ExtractDate(title + " " + context); found {
			rec.Published = &ts
		}
		out = append(out, rec)
	}

	doc, parseErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if parseErr == nil {
		e.extractDirectLinks(doc, add)
		e.extractSections(doc, add)
	} else {
		e.logger.Warn("html parse failed, regex fallback only",
			zap.String("company", company), zap.Error(parseErr))
	}

	// The raw sweep catches hrefs goquery dropped; anchors already extracted
	// above would reappear with file-name titles, so known URLs are skipped.
	e.extractRaw(body, func(title, href, context string) {
		if abs := resolveHref(base, href); abs != "" {
			if _, dup := seenURLs[normalizeKey(abs)]; dup {
				return
			}
		}
		add(title, href, context)
	})

	return out, nil
}

func normalizeKey(rawURL string) string {
	norm, err := docwatch.NormalizeURL(rawURL)
	if err != nil {
		return rawURL
	}
	return norm
}

func (e *Extractor) extractSections(doc *goquery.Document, add func(title, href, context string)) {
	for _, selector := range sectionSelectors {
		doc.Find(selector).Each(func(_ int, section *goquery.Selection) {
			section.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
				href, _ := link.Attr("href")
				add(link.Text(), href, surroundingText(link))
			})
		})
	}
}

func (e *Extractor) extractDirectLinks(doc *goquery.Document, add func(title, href, context string)) {
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !hasDocExtension(href) {
			return
		}
		add(link.Text(), href, surroundingText(link))
	})
}

func (e *Extractor) extractRaw(body []byte, add func(title, href, context string)) {
	for _, m := range hrefFallback.FindAllSubmatch(body, -1) {
		href := string(m[1])
		add(titleFromHref(href), href, "")
	}
}

// surroundingText collects the parent's text so dates printed next to the
// link ("Last Updated: 02.05.2026") are visible to date extraction.
func surroundingText(link *goquery.Selection) string {
	parent := link.Parent()
	if parent.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(parent.Text())
}

func hasDocExtension(href string) bool {
	lower := strings.ToLower(href)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range docExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// titleFromHref derives a readable title from a file name for links found
// only by the raw sweep.
func titleFromHref(href string) string {
	segment := href
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.LastIndex(segment, "."); i > 0 {
		segment = segment[:i]
	}
	segment = strings.NewReplacer("-", " ", "_", " ", "%20", " ").Replace(segment)
	return strings.TrimSpace(segment)
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(strings.ToLower(href), "javascript:") ||
		strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
