package resource

import (
	"context"

	"github.com/baladhub/balad-backend/pkg/docquery"
	"github.com/baladhub/balad-backend/pkg/i18n"
)

// populate resolves the reference field of each document into its embedded
// document, shaped by the spec's projection and localized for lang. One
// batched fetch covers all documents. References to missing documents are
// left as the raw id.
func (h *Handlers) populate(ctx context.Context, spec *PopulateSpec, docs []docquery.Document, lang i18n.Lang) error {
	if spec == nil || len(docs) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, ok := doc[spec.Field].(string)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	refs, err := h.docs.GetMany(ctx, spec.Collection, ids)
	if err != nil {
		return err
	}

	projection := docquery.ParseProjection(spec.Select, lang, spec.LangFields)
	for _, doc := range docs {
		id, ok := doc[spec.Field].(string)
		if !ok {
			continue
		}
		ref, found := refs[id]
		if !found {
			continue
		}
		embedded := docquery.Document{}
		for k, v := range ref {
			embedded[k] = v
		}
		doc[spec.Field] = Localize(projection.Apply(embedded), spec.LangFields, lang)
	}
	return nil
}
