package docquery

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baladhub/balad-backend/pkg/i18n"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, Querier) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, db
}

func TestFindComposesFilterSearchSortAndBounds(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectQuery(
		"SELECT doc FROM documents WHERE collection = $1 AND doc->>'category' = $2" +
			" AND (doc->>'nameEn' ILIKE $3 OR doc->>'nameAr' ILIKE $4)" +
			" ORDER BY doc->>'nameEn' ASC, doc->>'createdAt' DESC" +
			" LIMIT $5 OFFSET $6",
	).WithArgs("lessons", "c1", "%verbs%", "%verbs%", 20, 20).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"l1","nameEn":"Verbs","nameAr":"أفعال","_version":1}`)))

	b := NewBuilder("lessons").
		Filter(map[string]any{"category": "c1"}).
		Search([]string{"nameEn", "nameAr"}, "verbs").
		Sort("name -createdAt", i18n.LangEnglish, []string{"name"}).
		Paginate(2, 20, 45)

	docs, err := b.Find(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Verbs", docs[0]["nameEn"])
	assert.NotContains(t, docs[0], "_version")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWithoutModifiersIsBareSelect(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectQuery("SELECT doc FROM documents WHERE collection = $1").
		WithArgs("banner").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	docs, err := NewBuilder("banner").
		Filter(nil).
		Search(nil, "").
		Sort("", i18n.LangEnglish, nil).
		Find(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountCloneIgnoresSortAndBounds(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectQuery("SELECT COUNT(*) FROM documents WHERE collection = $1 AND doc->>'category' = $2").
		WithArgs("lessons", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))

	b := NewBuilder("lessons").
		Filter(map[string]any{"category": "c1"}).
		Sort("-createdAt", i18n.LangEnglish, nil)

	total, err := b.CountClone().Count(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 45, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneNotFound(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectQuery("SELECT doc FROM documents WHERE collection = $1 AND id = $2").
		WithArgs("categories", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	_, err := NewBuilder("categories").FindOne(context.Background(), db, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSortExpandsLocalizableFieldForAll(t *testing.T) {
	b := NewBuilder("categories").Sort("name", i18n.LangAll, []string{"name"})
	assert.Equal(t, []string{"doc->>'nameEn' ASC", "doc->>'nameAr' ASC"}, b.orderBy)
}

func TestSortRejectsUnsafeSpecEntirely(t *testing.T) {
	b := NewBuilder("categories").Sort("name'; DROP TABLE documents--", i18n.LangEnglish, nil)
	assert.Empty(t, b.orderBy)

	// A bad token poisons the whole spec, including tokens that would
	// pass validation on their own.
	b = NewBuilder("categories").Sort("createdAt bad-field", i18n.LangEnglish, nil)
	assert.Empty(t, b.orderBy)
}

func TestFilterStringifiesNonStringValues(t *testing.T) {
	b := NewBuilder("lessons").Filter(map[string]any{"order": 3})
	assert.Equal(t, []any{"3"}, b.args)
}

func TestPaginateWindow(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int
		pages      int
		next, prev *int
	}{
		{name: "middle page", page: 2, limit: 20, total: 45, pages: 3, next: intp(3), prev: intp(1)},
		{name: "first page", page: 1, limit: 20, total: 45, pages: 3, next: intp(2)},
		{name: "last page", page: 3, limit: 20, total: 45, pages: 3, prev: intp(2)},
		{name: "exact fit has no next", page: 2, limit: 20, total: 40, pages: 2, prev: intp(1)},
		{name: "empty result", page: 1, limit: 20, total: 0, pages: 0},
		{name: "defaults applied", page: 0, limit: 0, total: 5, pages: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewBuilder("categories").Paginate(tc.page, tc.limit, tc.total).Pagination
			require.NotNil(t, p)
			assert.Equal(t, tc.pages, p.NumberOfPages)
			assert.Equal(t, tc.next, p.NextPage)
			assert.Equal(t, tc.prev, p.PreviousPage)
		})
	}
}

func TestProjectionIncludeKeepsID(t *testing.T) {
	p := ParseProjection("name imageUrl", i18n.LangArabic, []string{"name"})
	doc := p.Apply(Document{
		"id": "c1", "nameEn": "Food", "nameAr": "طعام", "imageUrl": "u", "_version": 2,
	})
	assert.Equal(t, Document{"id": "c1", "nameAr": "طعام", "imageUrl": "u"}, doc)
}

func TestProjectionExclude(t *testing.T) {
	p := ParseProjection("-createdAt", i18n.LangEnglish, nil)
	doc := p.Apply(Document{"id": "c1", "createdAt": "x", "_version": 1, "nameEn": "Food"})
	assert.Equal(t, Document{"id": "c1", "nameEn": "Food"}, doc)
}

func TestProjectionDefaultHidesVersionOnly(t *testing.T) {
	p := ParseProjection("", i18n.LangEnglish, nil)
	doc := p.Apply(Document{"id": "c1", "_version": 4, "nameEn": "Food"})
	assert.Equal(t, Document{"id": "c1", "nameEn": "Food"}, doc)
}

func intp(v int) *int { return &v }
