package extractor

import (
	"strings"

	"github.com/mintoswatch/docwatch/internal/docwatch"
)

var financialKeywords = []string{
	"financial", "finance", "statement", "report", "annual", "quarterly",
	"interim", "balance", "income", "cash flow", "profit", "loss",
	"earnings", "audit", "q1", "q2", "q3", "q4", "fiscal",
}

var presentationKeywords = []string{
	"presentation", "slide", "deck", "investor", "corporate", "overview",
	"introduction", "summary", "profile", "factsheet", "fact sheet",
}

var loanAgreementKeywords = []string{
	"agreement", "assignment", "loan terms", "cooperation", "pledge",
	"suretyship", "guarantee",
}

// ClassifyDocument assigns a document type from title and URL keywords.
// Financial keywords win over presentation keywords, matching how titled
// reports usually carry both ("Investor Report Q3").
func ClassifyDocument(title, url string) docwatch.DocumentType {
	haystack := strings.ToLower(title) + " " + strings.ToLower(url)

	if containsAny(haystack, financialKeywords) {
		return docwatch.TypeFinancials
	}
	if containsAny(haystack, presentationKeywords) {
		return docwatch.TypePresentation
	}
	if containsAny(haystack, loanAgreementKeywords) {
		return docwatch.TypeLoanAgreement
	}
	return docwatch.TypeOther
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
