package scraper

import (
	"regexp"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Strategy pulls one raw field value out of a candidate element. An empty
// return means the strategy did not apply.
type Strategy func(card *goquery.Selection) string

// Text reads the normalised text of the first element matching selector.
func Text(selector string) Strategy {
	return func(card *goquery.Selection) string {
		return normaliseText(card.Find(selector).First().Text())
	}
}

// Attr reads an attribute of the first element matching selector.
func Attr(selector, attr string) Strategy {
	return func(card *goquery.Selection) string {
		v, _ := card.Find(selector).First().Attr(attr)
		return normaliseText(v)
	}
}

// SelfAttr reads an attribute of the candidate element itself, for layouts
// where the whole card is an anchor.
func SelfAttr(attr string) Strategy {
	return func(card *goquery.Selection) string {
		v, _ := card.Attr(attr)
		return normaliseText(v)
	}
}

// TextMatching returns the first leaf element under selector whose text
// matches re. It is the last resort for prices rendered without stable
// markup. Wrappers are skipped because their text joins the title with the
// price, and a set number right before the amount would read as its digits.
func TextMatching(selector string, re *regexp.Regexp) Strategy {
	return func(card *goquery.Selection) string {
		var found string
		card.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if s.Children().Length() > 0 {
				return true
			}
			txt := normaliseText(s.Text())
			if m := re.FindString(txt); m != "" {
				found = m
				return false
			}
			return true
		})
		return found
	}
}

// Field is an ordered fallback chain for one listing field.
type Field struct {
	Strategies []Strategy
	// MinLen and MaxLen bound the plausible value length in runes.
	// Zero disables the bound.
	MinLen int
	MaxLen int
}

// Texts builds a Field that reads text from each selector in order.
func Texts(selectors ...string) Field {
	f := Field{}
	for _, sel := range selectors {
		f.Strategies = append(f.Strategies, Text(sel))
	}
	return f
}

// Hrefs builds a Field that reads href from each selector in order.
func Hrefs(selectors ...string) Field {
	f := Field{}
	for _, sel := range selectors {
		f.Strategies = append(f.Strategies, Attr(sel, "href"))
	}
	return f
}

// Bounded returns a copy of f with length bounds applied.
func (f Field) Bounded(minLen, maxLen int) Field {
	f.MinLen, f.MaxLen = minLen, maxLen
	return f
}

// Or appends more strategies to the end of the chain.
func (f Field) Or(more ...Strategy) Field {
	f.Strategies = append(append([]Strategy(nil), f.Strategies...), more...)
	return f
}

// Extract runs the chain and returns the first plausible value.
func (f Field) Extract(card *goquery.Selection) (string, bool) {
	for _, strategy := range f.Strategies {
		v := strategy(card)
		if v == "" || !f.plausible(v) {
			continue
		}
		return v, true
	}
	return "", false
}

func (f Field) plausible(v string) bool {
	n := utf8.RuneCountInString(v)
	if f.MinLen > 0 && n < f.MinLen {
		return false
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return false
	}
	return true
}
