package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"lego-price-agent/models"
)

var (
	// catalogIDPatterns are tried in order; the hyphenated variant must come
	// before the bare number so "42131-1" is not cut to "42131".
	catalogIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{3,5}-\d{1,2})\b`),
		regexp.MustCompile(`\b(\d{3,5})\b`),
	}
	// priceNoise matches everything that is not part of a number.
	priceNoise = regexp.MustCompile(`[^\d,.]`)
)

// ExtractCatalogID returns the first set number found in title.
func ExtractCatalogID(title string) (string, bool) {
	for _, re := range catalogIDPatterns {
		if m := re.FindStringSubmatch(title); len(m) >= 2 {
			return m[1], true
		}
	}
	return "", false
}

// ParsePrice turns marketplace price text such as "2 499,00 zł" into a
// number. Comma is treated as the decimal separator.
func ParsePrice(raw string) (float64, bool) {
	cleaned := priceNoise.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// ClassifyCondition reports new when the lower-cased title contains marker,
// used otherwise. An empty marker never matches.
func ClassifyCondition(title, marker string) models.Condition {
	if marker != "" && strings.Contains(strings.ToLower(title), strings.ToLower(marker)) {
		return models.ConditionNew
	}
	return models.ConditionUsed
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
