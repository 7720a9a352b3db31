package docquery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/baladhub/balad-backend/pkg/i18n"
)

// ErrNotFound is returned when a single-document lookup matches nothing.
var ErrNotFound = errors.New("document not found")

// fieldName guards JSON keys that get interpolated into SQL fragments.
// Anything that doesn't match is silently skipped, in line with the
// tolerate-absent-input policy of the builder.
var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Querier is the minimal query surface the builder executes against.
// *sql.DB satisfies it, as does sqlmock in tests.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Document is a stored record as fetched from the document table.
type Document map[string]any

// Pagination describes the page window of a list response.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	Limit         int  `json:"limit"`
	NumberOfPages int  `json:"numberOfPages"`
	NextPage      *int `json:"nextPage,omitempty"`
	PreviousPage  *int `json:"previousPage,omitempty"`
}

// Builder accumulates query modifications over one collection and defers
// execution until Find, FindOne, or Count is called, so a count-only clone
// can be derived before pagination bounds are applied. Every modifier
// degrades to a no-op when its input is absent. A Builder is request-scoped
// and not safe for concurrent use.
type Builder struct {
	collection string
	conds      []string
	args       []any
	orderBy    []string
	projection *Projection
	limit      int
	offset     int
	bounded    bool

	// Pagination is populated by Paginate and read by the list handler.
	Pagination *Pagination
}

// NewBuilder starts a query over the named collection.
func NewBuilder(collection string) *Builder {
	return &Builder{collection: collection}
}

// Filter adds AND-equality conditions for each criteria entry. Nil or empty
// criteria leave the query untouched. Keys are applied in sorted order so the
// generated SQL is deterministic.
func (b *Builder) Filter(criteria map[string]any) *Builder {
	if len(criteria) == 0 {
		return b
	}
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		if fieldName.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.conds = append(b.conds, fmt.Sprintf("doc->>'%s' = ?", k))
		b.args = append(b.args, stringify(criteria[k]))
	}
	return b
}

// Search adds a disjunctive case-insensitive pattern match across the given
// fields. No keyword or no searchable fields means no condition.
func (b *Builder) Search(fields []string, keyword string) *Builder {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(fields) == 0 {
		return b
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if !fieldName.MatchString(f) {
			continue
		}
		parts = append(parts, fmt.Sprintf("doc->>'%s' ILIKE ?", f))
		b.args = append(b.args, "%"+keyword+"%")
	}
	if len(parts) == 0 {
		return b
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
	return b
}

// Sort translates a space-separated sort spec ("name -createdAt") into an
// ORDER BY. Base names listed in langFields resolve to their stored variants
// for lang; LangAll expands to both variants, English first. A spec with any
// token that is not a plain identifier is rejected as a whole.
func (b *Builder) Sort(spec string, lang i18n.Lang, langFields []string) *Builder {
	var exprs []string
	for _, token := range strings.Fields(spec) {
		dir := "ASC"
		name := token
		if strings.HasPrefix(token, "-") {
			dir = "DESC"
			name = token[1:]
		}
		if !fieldName.MatchString(name) {
			return b
		}
		for _, stored := range resolveField(name, lang, langFields) {
			exprs = append(exprs, fmt.Sprintf("doc->>'%s' %s", stored, dir))
		}
	}
	b.orderBy = append(b.orderBy, exprs...)
	return b
}

// Project records the field projection applied to fetched documents. An
// empty spec falls back to excluding the internal version field. Projection
// happens in Go after the fetch, not in SQL.
func (b *Builder) Project(spec string, lang i18n.Lang, langFields []string) *Builder {
	b.projection = ParseProjection(spec, lang, langFields)
	return b
}

// Paginate computes the page window from a 1-based page and a limit, applies
// the bounds to the query, and records the Pagination result. totalCount
// must come from a CountClone executed before this call.
func (b *Builder) Paginate(page, limit, totalCount int) *Builder {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	b.limit = limit
	b.offset = (page - 1) * limit
	b.bounded = true

	p := &Pagination{
		CurrentPage:   page,
		Limit:         limit,
		NumberOfPages: (totalCount + limit - 1) / limit,
	}
	if page*limit < totalCount {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PreviousPage = &prev
	}
	b.Pagination = p
	return b
}

// DefaultLimit is the page size used when the request does not supply one.
const DefaultLimit = 20

// CountClone derives an independent builder sharing this builder's filter and
// search state but none of its sort, projection, or pagination bounds. The
// total for a list response must be counted through a clone before Paginate
// mutates the live builder.
func (b *Builder) CountClone() *Builder {
	clone := &Builder{collection: b.collection}
	clone.conds = append([]string(nil), b.conds...)
	clone.args = append([]any(nil), b.args...)
	return clone
}

// Count executes SELECT COUNT(*) with the accumulated conditions.
func (b *Builder) Count(ctx context.Context, q Querier) (int, error) {
	query, args := b.buildCount()
	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting %s documents: %w", b.collection, err)
	}
	return count, nil
}

// Find executes the accumulated query and returns the (projected) documents.
func (b *Builder) Find(ctx context.Context, q Querier) ([]Document, error) {
	query, args := b.buildSelect()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s documents: %w", b.collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s document: %w", b.collection, err)
		}
		doc := Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", b.collection, err)
		}
		docs = append(docs, b.project(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s documents: %w", b.collection, err)
	}
	return docs, nil
}

// FindOne fetches a single document by id, honoring the projection.
// Returns ErrNotFound when the id matches nothing.
func (b *Builder) FindOne(ctx context.Context, q Querier, id string) (Document, error) {
	query := numberPlaceholders(b.buildSelectOne())
	args := append(b.whereArgs(), id)

	var raw []byte
	err := q.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s document %s: %w", b.collection, id, err)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s document %s: %w", b.collection, id, err)
	}
	return b.project(doc), nil
}

func (b *Builder) project(doc Document) Document {
	if b.projection == nil {
		return defaultProjection.Apply(doc)
	}
	return b.projection.Apply(doc)
}

func (b *Builder) whereClause() string {
	clause := "WHERE collection = ?"
	for _, cond := range b.conds {
		clause += " AND " + cond
	}
	return clause
}

func (b *Builder) whereArgs() []any {
	return append([]any{b.collection}, b.args...)
}

func (b *Builder) buildSelect() (string, []any) {
	query := "SELECT doc FROM documents " + b.whereClause()
	args := b.whereArgs()
	if len(b.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(b.orderBy, ", ")
	}
	if b.bounded {
		query += " LIMIT ? OFFSET ?"
		args = append(args, b.limit, b.offset)
	}
	return numberPlaceholders(query), args
}

func (b *Builder) buildSelectOne() string {
	return "SELECT doc FROM documents " + b.whereClause() + " AND id = ?"
}

func (b *Builder) buildCount() (string, []any) {
	query := "SELECT COUNT(*) FROM documents " + b.whereClause()
	return numberPlaceholders(query), b.whereArgs()
}

// numberPlaceholders rewrites ?-style placeholders into the $1..$n form lib/pq
// expects. Conditions are composed with ? so clauses can be reordered and
// cloned without renumbering.
func numberPlaceholders(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// resolveField maps a base field name to its stored name(s): localizable
// bases get their language-suffixed variants, everything else passes through.
func resolveField(name string, lang i18n.Lang, langFields []string) []string {
	for _, lf := range langFields {
		if lf == name {
			return lang.Variants(name)
		}
	}
	return []string{name}
}
