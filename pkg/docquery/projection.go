package docquery

import (
	"strings"

	"github.com/baladhub/balad-backend/pkg/i18n"
)

// VersionKey is the internal revision field stored inside every document.
// It is hidden from responses unless a projection asks for it explicitly.
const VersionKey = "_version"

// defaultProjection hides the version key and nothing else.
var defaultProjection = &Projection{exclude: []string{VersionKey}}

// Projection is a parsed field selection. It is either an include list
// (only the named fields survive, id always kept) or an exclude list
// (the named fields are dropped). Include wins when a spec mixes both.
type Projection struct {
	include []string
	exclude []string
}

// ParseProjection parses a space-separated field spec ("name imageUrl" or
// "-createdAt"). Localizable base names expand per lang. An empty spec
// yields the default projection.
func ParseProjection(spec string, lang i18n.Lang, langFields []string) *Projection {
	tokens := strings.Fields(spec)
	if len(tokens) == 0 {
		return defaultProjection
	}
	p := &Projection{}
	for _, token := range tokens {
		name := token
		excluded := strings.HasPrefix(token, "-")
		if excluded {
			name = token[1:]
		}
		if name == "" {
			continue
		}
		for _, stored := range resolveField(name, lang, langFields) {
			if excluded {
				p.exclude = append(p.exclude, stored)
			} else {
				p.include = append(p.include, stored)
			}
		}
	}
	if len(p.include) == 0 && len(p.exclude) == 0 {
		return defaultProjection
	}
	return p
}

// Apply trims doc in place according to the projection and returns it.
func (p *Projection) Apply(doc Document) Document {
	if doc == nil {
		return nil
	}
	if len(p.include) > 0 {
		keep := map[string]struct{}{"id": {}}
		for _, f := range p.include {
			keep[f] = struct{}{}
		}
		for k := range doc {
			if _, ok := keep[k]; !ok {
				delete(doc, k)
			}
		}
		return doc
	}
	for _, f := range p.exclude {
		delete(doc, f)
	}
	delete(doc, VersionKey)
	return doc
}
