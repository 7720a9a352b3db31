// Package docquery builds and executes queries over the JSONB document table.
//
// # Overview
//
// Every entity collection shares one physical table; a Builder accumulates
// filter, search, sort, projection, and pagination state for a single
// collection and defers SQL generation until execution. Each modifier is a
// no-op when its input is absent, so handlers can chain the full set
// unconditionally from raw request parameters.
//
// # Execution Order
//
// List handlers count before they paginate:
//
//	b := docquery.NewBuilder("categories").
//		Filter(criteria).
//		Search(searchFields, keyword).
//		Sort(sortSpec, lang, langFields)
//	total, err := b.CountClone().Count(ctx, db)
//	docs, err := b.Paginate(page, limit, total).Find(ctx, db)
//
// CountClone captures the filter and search state only, so the reported
// total reflects all matching documents rather than the current page.
//
// # Localization
//
// Localizable fields are stored as language-suffixed variants (nameEn,
// nameAr). Sort and projection specs use base names; the builder resolves
// them to stored names for the request language. The "all" language expands
// a base name to both variants, English first.
package docquery
