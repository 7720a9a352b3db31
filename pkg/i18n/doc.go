// Package i18n provides request-language resolution and response-message
// translation.
//
// # Overview
//
// Every stored localizable field exists in two variants, one per supported
// language (nameEn / nameAr). A request declares its language through the
// `lang` header; ResolveLanguage is the single place that header is
// interpreted. The special tag "all" asks reads to keep both variants
// instead of collapsing to one.
//
// # Usage
//
//	lang := i18n.ResolveLanguage(r.Header.Get("lang"))
//	tr := i18n.NewTranslator()
//	msg := tr.Translate("Category created successfully", lang)
//
// Catalogs are go-i18n YAML files embedded at build time; message IDs are the
// English sentences, so untranslated messages degrade to English rather than
// erroring.
package i18n
