package resource

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lessonWithCategory = Descriptor{
	Collection:  "lessons",
	DisplayName: "Lesson",
	LangFields:  []string{"name"},
	Populate: &PopulateSpec{
		Field:      "category",
		Collection: "categories",
		Select:     "name imageUrl",
		LangFields: []string{"name"},
	},
}

func TestGetOneEmbedsPopulatedReference(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"l1","nameEn":"Verbs","nameAr":"أفعال","category":"c1"}`)))
	mock.ExpectQuery("SELECT doc FROM documents").
		WithArgs("categories", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"c1","nameEn":"Grammar","nameAr":"قواعد","imageUrl":"u","createdAt":"x"}`)))

	req := httptest.NewRequest(http.MethodGet, "/admin/lessons/l1", nil)
	rec := serve(t, h, lessonWithCategory, req, MountOptions{})

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)

	category, ok := data["category"].(map[string]any)
	require.True(t, ok, "reference should be replaced with the embedded document")
	assert.Equal(t, "Grammar", category["name"])
	assert.Equal(t, "u", category["imageUrl"])
	assert.Equal(t, "c1", category["id"])
	assert.NotContains(t, category, "createdAt")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopulateLeavesDanglingReferenceAsID(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"l1","category":"gone"}`)))
	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	req := httptest.NewRequest(http.MethodGet, "/admin/lessons/l1", nil)
	rec := serve(t, h, lessonWithCategory, req, MountOptions{})

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "gone", data["category"])
}
