package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonSlug         = regexp.MustCompile(`[^a-z0-9]+`)
	reTrimUnderscores = regexp.MustCompile(`_+`)

	reValidTZ    = regexp.MustCompile(`^[A-Za-z0-9_\-+/]+$`)
	reMultiSlash = regexp.MustCompile(`/+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func nfc(s string) string {
	return norm.NFC.String(s)
}

// stripMarks decomposes s and drops combining marks, so "Zumbá" becomes "Zumba".
func stripMarks(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeDisplayName is used for client names, class names and instructors.
func SanitizeDisplayName(input string) string {
	p := Pipeline{
		nfc,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

func SanitizeEmail(input string) string {
	p := Pipeline{
		nfc,
		trimAndLower,
	}
	return p.Apply(input)
}

// SanitizeCategory turns a free-form class type into a stable tag.
func SanitizeCategory(input string) string {
	p := Pipeline{
		stripMarks,
		trimAndLower,
		func(s string) string { return reNonSlug.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

func SanitizeTimezone(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if strings.EqualFold(s, "utc") {
		return "UTC"
	}
	if !reValidTZ.MatchString(s) {
		return s
	}
	s = reMultiSlash.ReplaceAllString(s, "/")
	return strings.Trim(s, "/")
}
