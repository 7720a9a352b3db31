package api

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/baladhub/balad-backend/pkg/httputil"
	"github.com/baladhub/balad-backend/pkg/i18n"
	"github.com/baladhub/balad-backend/pkg/identity"
	"github.com/baladhub/balad-backend/pkg/media"
	"github.com/baladhub/balad-backend/pkg/observability"
	"github.com/baladhub/balad-backend/pkg/resource"
	"github.com/baladhub/balad-backend/pkg/storage"
)

// Server assembles the HTTP surface: identity routes, the descriptor-driven
// entity mounts, and the operational endpoints.
type Server struct {
	router   *mux.Router
	db       *sql.DB
	docs     *storage.DocumentStore
	relay    *media.Relay
	handlers *resource.Handlers
	identity *identity.Handlers
	metrics  *observability.Metrics
	log      logrus.FieldLogger
}

// Deps carries the collaborators the server wires together.
type Deps struct {
	DB       *sql.DB
	Store    media.ObjectStore
	Identity *identity.Handlers
	Log      logrus.FieldLogger
}

// NewServer builds the router with all routes and middleware attached.
func NewServer(deps Deps) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		db:       deps.DB,
		docs:     storage.NewDocumentStore(deps.DB),
		relay:    media.NewRelay(deps.Store, deps.Log),
		identity: deps.Identity,
		metrics:  observability.NewMetrics(),
		log:      deps.Log,
	}
	s.handlers = resource.NewHandlers(s.docs, i18n.NewTranslator(), deps.Log)
	s.relay.Uploads = s.metrics.MediaUploadsTotal
	if s.identity != nil {
		s.identity.SignIns = s.metrics.SignInsTotal
	}

	s.router.Use(
		observability.Recoverer(deps.Log),
		observability.RequestLogger(deps.Log),
		s.metrics.Middleware,
	)
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes.
func (s *Server) setupRoutes() {
	if s.identity != nil {
		s.identity.RegisterRoutes(s.router)
	}

	s.handlers.Mount(s.router, "/admin/categories", resource.Descriptor{
		Collection:   "categories",
		DisplayName:  "Category",
		LangFields:   []string{"name", "description"},
		SearchFields: []string{"nameEn", "nameAr"},
		Sort:         "-createdAt",
		ReturnData:   true,
	}, resource.MountOptions{
		CreateWrapper: s.relay.UploadImage(media.ImageOptions{
			Folder: "categories", Prefix: "category", Field: "imageUrl", Required: true,
		}),
		UpdateWrapper: s.relay.UploadImage(media.ImageOptions{
			Folder: "categories", Prefix: "category", Field: "imageUrl",
		}),
	})

	s.handlers.Mount(s.router, "/admin/lessons", resource.Descriptor{
		Collection:   "lessons",
		DisplayName:  "Lesson",
		LangFields:   []string{"name", "description"},
		SearchFields: []string{"nameEn", "nameAr"},
		Sort:         "-createdAt",
		Populate: &resource.PopulateSpec{
			Field:      "category",
			Collection: "categories",
			Select:     "name imageUrl",
			LangFields: []string{"name"},
		},
		ReturnData: true,
	}, resource.MountOptions{
		CreateWrapper: s.relay.UploadAudio(media.AudioOptions{
			Folder: "lessons", Prefix: "lesson", Field: "audioUrl", Required: true,
		}),
		UpdateWrapper: s.relay.UploadAudio(media.AudioOptions{
			Folder: "lessons", Prefix: "lesson", Field: "audioUrl",
		}),
		ListWrapper: resource.WithFilter(categoryFilter),
	})

	s.handlers.Mount(s.router, "/admin/banner", resource.Descriptor{
		Collection:  "banner",
		DisplayName: "Banner",
		LangFields:  []string{"title"},
		Sort:        "-createdAt",
	}, resource.MountOptions{
		CreateWrapper: s.relay.UploadImage(media.ImageOptions{
			Folder: "banner", Prefix: "banner", Field: "imageUrl", Required: true, FullQuality: true,
		}),
		UpdateWrapper: s.relay.UploadImage(media.ImageOptions{
			Folder: "banner", Prefix: "banner", Field: "imageUrl", FullQuality: true,
		}),
	})

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
}

// categoryFilter narrows lesson lists to one category when the query asks.
func categoryFilter(r *http.Request) map[string]any {
	if c := r.URL.Query().Get("category"); c != "" {
		return map[string]any{"category": c}
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.WithError(err).Error("health check failed")
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
