package resource

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baladhub/balad-backend/pkg/i18n"
	"github.com/baladhub/balad-backend/pkg/storage"
)

var categoryDescriptor = Descriptor{
	Collection:   "categories",
	DisplayName:  "Category",
	LangFields:   []string{"name"},
	SearchFields: []string{"nameEn", "nameAr"},
	Sort:         "-createdAt",
	ReturnData:   true,
}

var bannerDescriptor = Descriptor{
	Collection:  "banner",
	DisplayName: "Banner",
	ReturnData:  false,
}

func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHandlers(storage.NewDocumentStore(db), i18n.NewTranslator(), log), mock
}

func serve(t *testing.T, h *Handlers, d Descriptor, req *http.Request, opts MountOptions) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	h.Mount(router, "/admin/"+d.Collection, d, opts)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateOneOmitsDataWhenNotConfigured(t *testing.T) {
	h, mock := newTestHandlers(t)
	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/admin/banner", strings.NewReader(`{"imageUrl":"u"}`))
	rec := serve(t, h, bannerDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Banner created successfully", body["message"])
	assert.NotContains(t, body, "data")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOneEchoesLocalizedDocument(t *testing.T) {
	h, mock := newTestHandlers(t)
	mock.ExpectExec("INSERT INTO documents").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/admin/categories",
		strings.NewReader(`{"nameEn":"Food","nameAr":"طعام"}`))
	req.Header.Set("lang", "ar")
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "تم إنشاء القسم بنجاح", body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "طعام", data["name"])
	assert.Equal(t, "Food", data["nameEn"])
	assert.NotEmpty(t, data["id"])
}

func TestCreateOneRejectsMalformedBody(t *testing.T) {
	h, mock := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/categories", strings.NewReader("{not json"))
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllCountsBeforePaginating(t *testing.T) {
	h, mock := newTestHandlers(t)

	// Expectations are ordered: the count on the unpaginated clone must run
	// before the bounded select.
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))
	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"c1","nameEn":"Food","nameAr":"طعام"}`)))

	req := httptest.NewRequest(http.MethodGet, "/admin/categories?page=2&limit=20", nil)
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	pagination, ok := body["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, float64(3), pagination["numberOfPages"])
	assert.Equal(t, float64(3), pagination["nextPage"])
	assert.Equal(t, float64(1), pagination["previousPage"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllAppliesAttachedFilter(t *testing.T) {
	h, mock := newTestHandlers(t)

	lessons := Descriptor{Collection: "lessons", DisplayName: "Lesson", LangFields: []string{"name"}}

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("lessons", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT doc FROM documents").
		WithArgs("lessons", "c1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"l1","category":"c1"}`)))

	req := httptest.NewRequest(http.MethodGet, "/admin/lessons?category=c1", nil)
	rec := serve(t, h, lessons, req, MountOptions{
		ListWrapper: WithFilter(func(r *http.Request) map[string]any {
			if c := r.URL.Query().Get("category"); c != "" {
				return map[string]any{"category": c}
			}
			return nil
		}),
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOneLocalizesForArabic(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"c1","nameEn":"Food","nameAr":"طعام"}`)))

	req := httptest.NewRequest(http.MethodGet, "/admin/categories/c1", nil)
	req.Header.Set("lang", "ar")
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotContains(t, body, "message")

	data := body["data"].(map[string]any)
	assert.Equal(t, "طعام", data["name"])
	assert.Equal(t, "طعام", data["nameAr"])
}

func TestGetOneNotFoundTranslated(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	req := httptest.NewRequest(http.MethodGet, "/admin/categories/missing", nil)
	req.Header.Set("lang", "ar")
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "القسم غير موجود", body["message"])
}

func TestUpdateOneMergesBodyOntoStored(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT doc FROM documents").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"c1","nameEn":"Food","nameAr":"طعام","imageUrl":"old"}`)))
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPatch, "/admin/categories/c1",
		strings.NewReader(`{"imageUrl":"new"}`))
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Category updated successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "new", data["imageUrl"])
	assert.Equal(t, "Food", data["nameEn"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOneOmitsData(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/admin/categories/c1", nil)
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Category deleted successfully", body["message"])
	assert.NotContains(t, body, "data")
}

func TestDeleteOneUnknownID(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/admin/categories/missing", nil)
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decodeBody(t, rec)["message"])
}

// Guards against a driver error being surfaced with its raw message.
func TestGetAllDatabaseErrorIsMasked(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

	req := httptest.NewRequest(http.MethodGet, "/admin/categories", nil)
	rec := serve(t, h, categoryDescriptor, req, MountOptions{})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sql:")
}
