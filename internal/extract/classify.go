package extract

import "regexp"

// ReasonPromoContext is the discard reason for rows whose evidence shows
// multi-buy or promotional mechanics.
const ReasonPromoContext = "Promo/multi-buy context detected (non-comparable, discarded)"

// forbiddenContextPatterns guard the average against bulk/multi-buy/promo
// mechanics. Locale-aware: German and English retail phrasing.
var forbiddenContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)2\s*(für|for)\s*`),
	regexp.MustCompile(`(?i)3\s*(für|for)\s*`),
	regexp.MustCompile(`(?i)mix\s*&\s*match`),
	regexp.MustCompile(`(?i)mehrkauf`),
	regexp.MustCompile(`(?i)bundle`),
	regexp.MustCompile(`(?i)\bab\b\s*\d`),
	regexp.MustCompile(`(?i)\bfrom\b\s*\d`),
}

// ForbiddenContext reports whether evidence text shows a promotional or
// multi-buy mechanic. Matching rows are discarded outright, never included
// at a lower confidence: every aggregated row must represent a directly
// comparable single-unit regular price.
func ForbiddenContext(text string) bool {
	for _, re := range forbiddenContextPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
