package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mintoswatch/docwatch/internal/extractor"
)

func TestNeedsRenderEmptyBody(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0, nil)
	require.True(t, h.NeedsRender(nil))
	require.True(t, h.NeedsRender([]byte{}))
}

func TestNeedsRenderSPAMarkers(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0, nil)

	bodies := []string{
		`<html><body><div id="root"></div></body></html>`,
		`<html><body><div id="app"></div></body></html>`,
		`<html><body><div data-reactroot></div></body></html>`,
		`<html><body><div id="__next"></div></body></html>`,
	}
	for _, b := range bodies {
		require.True(t, h.NeedsRender([]byte(b)), "body %q", b)
	}
}

func TestNeedsRenderScriptHeavySmallBody(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(2048, nil)

	body := `<html><body><p>hi</p><script>` + strings.Repeat("x", 500) + `</script></body></html>`
	require.True(t, h.NeedsRender([]byte(body)))
}

func TestNeedsRenderStaticPagePasses(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100, nil)

	body := `<html><body><main>` + strings.Repeat("<p>document listing</p>", 20) + `</main></body></html>`
	require.False(t, h.NeedsRender([]byte(body)))
}

func TestNeedsRenderMissingContentSelector(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(10, []string{".document-list", "a[href$='.pdf']"})

	empty := `<html><body><main><p>` + strings.Repeat("nothing here ", 30) + `</p></main></body></html>`
	require.True(t, h.NeedsRender([]byte(empty)))

	withList := `<html><body><div class="document-list"><a href="/f.pdf">Report</a></div>` +
		strings.Repeat("<p>pad</p>", 10) + `</body></html>`
	require.False(t, h.NeedsRender([]byte(withList)))

	withPDF := `<html><body><ul><li><a href="/files/annual.pdf">Annual</a></li></ul>` +
		strings.Repeat("<p>pad</p>", 10) + `</body></html>`
	require.False(t, h.NeedsRender([]byte(withPDF)))
}

// The shipped wiring hands the detector the extractor's section selectors,
// so a large static page without any document container still escalates.
func TestNeedsRenderWithExtractorSelectors(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0, extractor.SectionSelectors())

	plain := `<html><body>` + strings.Repeat("<p>about the company</p>", 300) + `</body></html>`
	require.True(t, h.NeedsRender([]byte(plain)))

	withDocs := `<html><body><div class="documents"><a href="/files/report.pdf">Annual Report</a></div>` +
		strings.Repeat("<p>about the company</p>", 300) + `</body></html>`
	require.False(t, h.NeedsRender([]byte(withDocs)))
}
