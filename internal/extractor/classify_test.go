package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

func TestClassifyDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		url   string
		want  docwatch.DocumentType
	}{
		{name: "annual report", title: "Annual Report 2025", url: "/files/a.pdf", want: docwatch.TypeFinancials},
		{name: "quarterly", title: "Q3 Results", url: "/files/q3.pdf", want: docwatch.TypeFinancials},
		{name: "audit", title: "Audited Statements", url: "/files/x.pdf", want: docwatch.TypeFinancials},
		{name: "presentation", title: "Company Presentation", url: "/p.pdf", want: docwatch.TypePresentation},
		{name: "factsheet", title: "Factsheet", url: "/f.pdf", want: docwatch.TypePresentation},
		{name: "keyword in url only", title: "Download", url: "/files/investor-deck.pdf", want: docwatch.TypePresentation},
		{name: "agreement", title: "Cooperation Agreement", url: "/a.pdf", want: docwatch.TypeLoanAgreement},
		{name: "pledge", title: "Pledge Terms", url: "/p.pdf", want: docwatch.TypeLoanAgreement},
		{name: "financial beats presentation", title: "Investor Report Q3", url: "/x.pdf", want: docwatch.TypeFinancials},
		{name: "unknown", title: "Some Document", url: "/d.pdf", want: docwatch.TypeOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ClassifyDocument(tc.title, tc.url))
		})
	}
}
