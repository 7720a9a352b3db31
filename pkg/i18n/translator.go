package i18n

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var messageFS embed.FS

// Translator resolves response messages for a request language. Message IDs
// are the English sentences themselves; an ID without a translation passes
// through unchanged, so callers never need to special-case missing entries.
type Translator struct {
	bundle *i18n.Bundle
}

// NewTranslator builds a Translator from the embedded message catalogs.
func NewTranslator() *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	if _, err := bundle.LoadMessageFileFS(messageFS, "messages/ar.yaml"); err != nil {
		panic(fmt.Sprintf("i18n: loading embedded message catalog: %v", err))
	}
	return &Translator{bundle: bundle}
}

// Translate renders msg for lang. English and "all" render the message as-is;
// Arabic consults the catalog and falls back to the English sentence.
func (t *Translator) Translate(msg string, lang Lang) string {
	if msg == "" {
		return ""
	}
	tag := "en"
	if lang == LangArabic {
		tag = "ar"
	}
	localizer := i18n.NewLocalizer(t.bundle, tag)
	out, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      msg,
		DefaultMessage: &i18n.Message{ID: msg, Other: msg},
	})
	if err != nil {
		return msg
	}
	return out
}
