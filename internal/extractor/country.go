package extractor

import "strings"

// countryTable maps keywords found in titles and URLs to a canonical country
// name. Adjective forms are listed alongside the country name itself.
var countryTable = []struct {
	keyword string
	country string
}{
	{"estonian", "Estonia"},
	{"estonia", "Estonia"},
	{"latvian", "Latvia"},
	{"latvia", "Latvia"},
	{"lithuanian", "Lithuania"},
	{"lithuania", "Lithuania"},
	{"finnish", "Finland"},
	{"finland", "Finland"},
	{"spanish", "Spain"},
	{"spain", "Spain"},
	{"polish", "Poland"},
	{"poland", "Poland"},
	{"czech", "Czech Republic"},
	{"romanian", "Romania"},
	{"romania", "Romania"},
	{"bulgarian", "Bulgaria"},
	{"bulgaria", "Bulgaria"},
	{"croatian", "Croatia"},
	{"croatia", "Croatia"},
	{"ukrainian", "Ukraine"},
	{"ukraine", "Ukraine"},
	{"kazakhstan", "Kazakhstan"},
	{"georgian", "Georgia"},
	{"georgia", "Georgia"},
	{"armenian", "Armenia"},
	{"armenia", "Armenia"},
	{"moldovan", "Moldova"},
	{"moldova", "Moldova"},
	{"albanian", "Albania"},
	{"albania", "Albania"},
	{"kosovo", "Kosovo"},
	{"macedonian", "North Macedonia"},
	{"macedonia", "North Macedonia"},
	{"botswana", "Botswana"},
	{"namibia", "Namibia"},
	{"zambia", "Zambia"},
	{"kenya", "Kenya"},
	{"mexican", "Mexico"},
	{"mexico", "Mexico"},
	{"colombian", "Colombia"},
	{"colombia", "Colombia"},
	{"indonesian", "Indonesia"},
	{"indonesia", "Indonesia"},
	{"vietnamese", "Vietnam"},
	{"vietnam", "Vietnam"},
	{"philippines", "Philippines"},
	{"turkish", "Turkey"},
	{"turkey", "Turkey"},
	{"united kingdom", "United Kingdom"},
}

// DetectCountry returns the country a document belongs to, or an empty
// string when neither title nor URL names one. Longer adjective forms are
// listed first so "estonian" does not fall through to "estonia".
func DetectCountry(title, url string) string {
	haystack := strings.ToLower(title) + " " + strings.ToLower(url)
	for _, entry := range countryTable {
		if strings.Contains(haystack, entry.keyword) {
			return entry.country
		}
	}
	return ""
}
