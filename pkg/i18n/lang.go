package i18n

import "strings"

// Lang is a request language tag. The set is closed: English, Arabic, or
// "all", which keeps both stored variants of a localizable field visible.
type Lang string

const (
	LangEnglish Lang = "en"
	LangArabic  Lang = "ar"
	LangAll     Lang = "all"
)

// ResolveLanguage maps the raw `lang` header value to a Lang. Matching is
// case-insensitive and anything unrecognized falls back to English.
func ResolveLanguage(header string) Lang {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "ar":
		return LangArabic
	case "all":
		return LangAll
	default:
		return LangEnglish
	}
}

// Suffix returns the stored-field suffix for the language ("En" or "Ar").
// LangAll has no single suffix and returns "".
func (l Lang) Suffix() string {
	switch l {
	case LangArabic:
		return "Ar"
	case LangAll:
		return ""
	default:
		return "En"
	}
}

// Variants expands a localizable base field name into its stored variant
// names for this language. LangAll yields both, English first.
func (l Lang) Variants(base string) []string {
	if l == LangAll {
		return []string{base + "En", base + "Ar"}
	}
	return []string{base + l.Suffix()}
}
