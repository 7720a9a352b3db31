package resource

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/baladhub/balad-backend/pkg/apierr"
	"github.com/baladhub/balad-backend/pkg/docquery"
	"github.com/baladhub/balad-backend/pkg/httputil"
	"github.com/baladhub/balad-backend/pkg/i18n"
	"github.com/baladhub/balad-backend/pkg/storage"
)

// Handlers builds the generic CRUD handlers for descriptor-driven entities.
type Handlers struct {
	docs *storage.DocumentStore
	tr   *i18n.Translator
	log  logrus.FieldLogger
}

// NewHandlers wires the handler factory to its collaborators.
func NewHandlers(docs *storage.DocumentStore, tr *i18n.Translator, log logrus.FieldLogger) *Handlers {
	return &Handlers{docs: docs, tr: tr, log: log}
}

// CreateOne returns the create handler for the entity. It persists the
// request body as a new document and answers 201 with the create message;
// the document itself is echoed only when the descriptor asks for it.
func (h *Handlers) CreateOne(d Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.ResolveLanguage(r.Header.Get("lang"))

		body := docquery.Document{}
		if err := httputil.ParseJSON(r, &body); err != nil {
			httputil.WriteAPIError(w, apierr.Validation("invalid request body"))
			return
		}

		doc, err := h.docs.Insert(r.Context(), d.Collection, body)
		if err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("create failed")
			httputil.WriteAPIError(w, err)
			return
		}

		env := httputil.Envelope{
			Success: true,
			Message: h.tr.Translate(d.createdMessage(), lang),
		}
		if d.ReturnData {
			Localize(doc, d.LangFields, lang)
			if d.Select != "" {
				doc = keepConfiguredKeys(doc, d.Select, d.LangFields)
			}
			env.Data = doc
		}
		httputil.WriteEnvelope(w, http.StatusCreated, env)
	}
}

// GetOne returns the single-document handler. The response carries data but
// no message.
func (h *Handlers) GetOne(d Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.ResolveLanguage(r.Header.Get("lang"))
		id := mux.Vars(r)["id"]

		b := docquery.NewBuilder(d.Collection).
			Project(d.Select, lang, d.LangFields)
		doc, err := h.docs.FindByID(r.Context(), b, id)
		if errors.Is(err, docquery.ErrNotFound) {
			httputil.WriteNotFound(w, h.tr.Translate(d.notFoundMessage(), lang))
			return
		}
		if err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("fetch failed")
			httputil.WriteAPIError(w, err)
			return
		}

		if err := h.populate(r.Context(), d.Populate, []docquery.Document{doc}, lang); err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("populate failed")
			httputil.WriteAPIError(w, err)
			return
		}

		httputil.WriteSuccess(w, Localize(doc, d.LangFields, lang))
	}
}

// GetAll returns the list handler. The total count is computed from a
// filtered-but-unpaginated clone before bounds are applied; counting after
// skip and limit would report the page size, not the matching total.
func (h *Handlers) GetAll(d Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.ResolveLanguage(r.Header.Get("lang"))

		keyword := httputil.ParseQueryString(r, "keyword", "")
		sortSpec := httputil.ParseQueryString(r, "sort", d.Sort)
		fieldsSpec := httputil.ParseQueryString(r, "fields", d.Select)
		page := httputil.ParseQueryInt(r, "page", 1)
		limit := httputil.ParseQueryInt(r, "limit", docquery.DefaultLimit)

		b := docquery.NewBuilder(d.Collection).
			Filter(FilterFromContext(r.Context())).
			Search(d.SearchFields, keyword)

		total, err := h.docs.Count(r.Context(), b.CountClone())
		if err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("count failed")
			httputil.WriteAPIError(w, err)
			return
		}

		docs, err := h.docs.Find(r.Context(), b.
			Sort(sortSpec, lang, d.LangFields).
			Project(fieldsSpec, lang, d.LangFields).
			Paginate(page, limit, total))
		if err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("list failed")
			httputil.WriteAPIError(w, err)
			return
		}

		if err := h.populate(r.Context(), d.Populate, docs, lang); err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("populate failed")
			httputil.WriteAPIError(w, err)
			return
		}
		for _, doc := range docs {
			Localize(doc, d.LangFields, lang)
		}

		httputil.WriteEnvelope(w, http.StatusOK, httputil.Envelope{
			Success:    true,
			Pagination: b.Pagination,
			Data:       docs,
		})
	}
}

// UpdateOne returns the update handler: shallow merge of the request body
// onto the stored document, request body winning per key.
func (h *Handlers) UpdateOne(d Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.ResolveLanguage(r.Header.Get("lang"))
		id := mux.Vars(r)["id"]

		body := docquery.Document{}
		if err := httputil.ParseJSON(r, &body); err != nil {
			httputil.WriteAPIError(w, apierr.Validation("invalid request body"))
			return
		}

		// The merge base is fetched with "all" semantics so both variants of
		// every localizable field survive the write.
		b := docquery.NewBuilder(d.Collection).
			Project(d.Select, i18n.LangAll, d.LangFields)
		existing, err := h.docs.FindByID(r.Context(), b, id)
		if errors.Is(err, docquery.ErrNotFound) {
			httputil.WriteNotFound(w, h.tr.Translate(d.notFoundMessage(), lang))
			return
		}
		if err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("fetch failed")
			httputil.WriteAPIError(w, err)
			return
		}

		for k, v := range body {
			if k == "id" {
				continue
			}
			existing[k] = v
		}

		if err := h.docs.Update(r.Context(), d.Collection, id, existing); err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("update failed")
			httputil.WriteAPIError(w, err)
			return
		}

		env := httputil.Envelope{
			Success: true,
			Message: h.tr.Translate(d.updatedMessage(), lang),
		}
		if d.ReturnData {
			env.Data = Localize(existing, d.LangFields, lang)
		}
		httputil.WriteEnvelope(w, http.StatusOK, env)
	}
}

// DeleteOne returns the delete handler. The response carries a message but
// no data payload.
func (h *Handlers) DeleteOne(d Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.ResolveLanguage(r.Header.Get("lang"))
		id := mux.Vars(r)["id"]

		err := h.docs.Delete(r.Context(), d.Collection, id)
		if errors.Is(err, docquery.ErrNotFound) {
			httputil.WriteNotFound(w, h.tr.Translate(d.notFoundMessage(), lang))
			return
		}
		if err != nil {
			h.log.WithError(err).WithField("collection", d.Collection).Error("delete failed")
			httputil.WriteAPIError(w, err)
			return
		}

		httputil.WriteEnvelope(w, http.StatusOK, httputil.Envelope{
			Success: true,
			Message: h.tr.Translate(d.deletedMessage(), lang),
		})
	}
}

// MountOptions lets callers wrap individual routes, typically with an upload
// relay on create and update, or a filter middleware on the list route.
type MountOptions struct {
	CreateWrapper func(http.Handler) http.Handler
	UpdateWrapper func(http.Handler) http.Handler
	ListWrapper   func(http.Handler) http.Handler
}

// Mount registers the five CRUD routes for the entity under path.
func (h *Handlers) Mount(r *mux.Router, path string, d Descriptor, opts MountOptions) {
	wrap := func(fn func(http.Handler) http.Handler, next http.Handler) http.Handler {
		if fn == nil {
			return next
		}
		return fn(next)
	}

	r.Handle(path, wrap(opts.CreateWrapper, h.CreateOne(d))).Methods(http.MethodPost)
	r.Handle(path, wrap(opts.ListWrapper, h.GetAll(d))).Methods(http.MethodGet)
	r.Handle(path+"/{id}", h.GetOne(d)).Methods(http.MethodGet)
	r.Handle(path+"/{id}", wrap(opts.UpdateWrapper, h.UpdateOne(d))).Methods(http.MethodPut, http.MethodPatch)
	r.Handle(path+"/{id}", h.DeleteOne(d)).Methods(http.MethodDelete)
}

// keepConfiguredKeys trims a create echo down to the configured projection
// keys, their language variants, and the resolved base values, plus id.
// Exclusion-style specs don't restrict the echo.
func keepConfiguredKeys(doc docquery.Document, spec string, langFields []string) docquery.Document {
	keep := map[string]struct{}{"id": {}}
	included := false
	for _, token := range strings.Fields(spec) {
		if strings.HasPrefix(token, "-") {
			continue
		}
		included = true
		keep[token] = struct{}{}
		for _, lf := range langFields {
			if lf == token {
				for _, variant := range i18n.LangAll.Variants(token) {
					keep[variant] = struct{}{}
				}
			}
		}
	}
	if !included {
		return doc
	}
	for k := range doc {
		if _, ok := keep[k]; !ok {
			delete(doc, k)
		}
	}
	return doc
}
