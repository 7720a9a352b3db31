package resource

import (
	"github.com/baladhub/balad-backend/pkg/docquery"
	"github.com/baladhub/balad-backend/pkg/i18n"
)

// Localize assigns each localizable base field the value of its stored
// variant for lang, leaving the suffixed variants in place. The "all"
// language keeps the document as stored, both variants visible.
func Localize(doc docquery.Document, langFields []string, lang i18n.Lang) docquery.Document {
	if doc == nil || lang == i18n.LangAll {
		return doc
	}
	suffix := lang.Suffix()
	for _, base := range langFields {
		if v, ok := doc[base+suffix]; ok {
			doc[base] = v
		}
	}
	return doc
}
