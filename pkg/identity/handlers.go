package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/baladhub/balad-backend/pkg/apierr"
	"github.com/baladhub/balad-backend/pkg/auth"
	"github.com/baladhub/balad-backend/pkg/httputil"
	"github.com/baladhub/balad-backend/pkg/i18n"
	"github.com/baladhub/balad-backend/pkg/storage"
)

// AppleExchanger and GoogleExchanger abstract the provider exchanges so the
// handlers can be tested against stubs.
type AppleExchanger interface {
	Exchange(ctx context.Context, code string, useBundleID bool) (*Claims, error)
}

type GoogleExchanger interface {
	Exchange(ctx context.Context, accessToken string) (*Claims, error)
}

// Handlers serves the provider sign-in endpoints.
type Handlers struct {
	users  *storage.UserStore
	issuer *auth.SessionIssuer
	apple  AppleExchanger
	google GoogleExchanger
	tr     *i18n.Translator
	log    logrus.FieldLogger

	// SignIns counts reconcile outcomes by provider. Optional; the server
	// wires it to the shared registry.
	SignIns *prometheus.CounterVec
}

// NewHandlers wires the identity endpoints to their collaborators.
func NewHandlers(users *storage.UserStore, issuer *auth.SessionIssuer, apple AppleExchanger, google GoogleExchanger, log logrus.FieldLogger) *Handlers {
	return &Handlers{users: users, issuer: issuer, apple: apple, google: google, tr: i18n.NewTranslator(), log: log}
}

func (h *Handlers) countSignIn(provider, outcome string) {
	if h.SignIns != nil {
		h.SignIns.WithLabelValues(provider, outcome).Inc()
	}
}

// RegisterRoutes mounts the identity endpoints on the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin/auth/apple", h.ContinueWithApple).Methods(http.MethodPost)
	r.HandleFunc("/admin/auth/apple/callback", h.AppleCallback).Methods(http.MethodPost)
	r.HandleFunc("/admin/auth/google", h.ContinueWithGoogle).Methods(http.MethodPost)
}

// ContinueWithApple signs a user in with an Apple authorization code.
func (h *Handlers) ContinueWithApple(w http.ResponseWriter, r *http.Request) {
	if h.apple == nil {
		httputil.WriteAPIError(w, apierr.AuthenticationFailed("apple sign-in is not available"))
		return
	}
	var body struct {
		AuthorizationCode string `json:"authorizationCode"`
		UseBundleID       bool   `json:"useBundleId"`
		NotificationToken string `json:"notificationToken"`
	}
	if err := httputil.ParseJSON(r, &body); err != nil {
		httputil.WriteAPIError(w, apierr.Validation("invalid request body"))
		return
	}
	if body.AuthorizationCode == "" {
		httputil.WriteAPIError(w, apierr.Validation("authorizationCode is required"))
		return
	}

	claims, err := h.apple.Exchange(r.Context(), body.AuthorizationCode, body.UseBundleID)
	if err != nil {
		h.log.WithError(err).Warn("apple exchange failed")
		httputil.WriteAPIError(w, err)
		return
	}

	h.reconcile(w, r, claims, "apple", body.NotificationToken)
}

// AppleCallback echoes the callback payload. Apple posts the web flow result
// here; the echo makes the round trip inspectable during integration.
func (h *Handlers) AppleCallback(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	// A non-JSON or empty body is fine for an echo endpoint.
	_ = httputil.ParseJSON(r, &body)

	query := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"body":   body,
		"params": mux.Vars(r),
		"query":  query,
	})
}

// ContinueWithGoogle signs a user in with a Google access token.
func (h *Handlers) ContinueWithGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		httputil.WriteAPIError(w, apierr.AuthenticationFailed("google sign-in is not available"))
		return
	}
	var body struct {
		GoogleAccessToken string `json:"googleAccessToken"`
		NotificationToken string `json:"notificationToken"`
	}
	if err := httputil.ParseJSON(r, &body); err != nil {
		httputil.WriteAPIError(w, apierr.Validation("invalid request body"))
		return
	}
	if body.GoogleAccessToken == "" {
		httputil.WriteAPIError(w, apierr.Validation("googleAccessToken is required"))
		return
	}

	claims, err := h.google.Exchange(r.Context(), body.GoogleAccessToken)
	if err != nil {
		h.log.WithError(err).Warn("google exchange failed")
		httputil.WriteAPIError(w, err)
		return
	}

	h.reconcile(w, r, claims, "google", body.NotificationToken)
}

// reconcile maps verified provider claims onto a local account and answers
// with a session. Both providers share this state machine.
//
// Sign-in matches by email alone; an account created through one provider
// can be resolved through the other. A provider-linking check existed here
// once and was deliberately left out.
func (h *Handlers) reconcile(w http.ResponseWriter, r *http.Request, claims *Claims, provider, notificationToken string) {
	ctx := r.Context()
	lang := i18n.ResolveLanguage(r.Header.Get("lang"))

	user, err := h.users.GetByEmail(ctx, claims.Email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if !claims.EmailVerified {
			h.countSignIn(provider, "unverified")
			httputil.WriteAPIError(w, apierr.EmailNotVerified(h.tr.Translate("Your email address is not verified", lang)))
			return
		}
		user, err = h.users.Create(ctx, &storage.User{
			Email:             claims.Email,
			FirstName:         claims.FirstName,
			LastName:          claims.LastName,
			PhotoURL:          claims.PhotoURL,
			Provider:          provider,
			ProviderID:        claims.ProviderID,
			NotificationToken: notificationToken,
			EmailVerified:     true,
		})
		if err != nil {
			h.log.WithError(err).Error("user creation failed")
			httputil.WriteAPIError(w, err)
			return
		}
		h.countSignIn(provider, "registered")
		h.respond(w, user, fmt.Sprintf(h.tr.Translate("Registered successfully as %s", lang), user.Email), true)
		return

	case err != nil:
		h.log.WithError(err).Error("user lookup failed")
		httputil.WriteAPIError(w, err)
		return
	}

	if user.Blocked {
		h.countSignIn(provider, "blocked")
		httputil.WriteAPIError(w, apierr.AccountBlocked(h.tr.Translate("Your account has been blocked", lang)))
		return
	}

	if !user.ProfileComplete() {
		h.countSignIn(provider, "incomplete_profile")
		h.respond(w, user, h.tr.Translate("Please complete your profile to continue", lang), true)
		return
	}

	user.NotificationToken = notificationToken
	if err := h.users.UpdateNotificationToken(ctx, user.ID, notificationToken); err != nil {
		h.log.WithError(err).Error("notification token update failed")
		httputil.WriteAPIError(w, err)
		return
	}
	h.countSignIn(provider, "welcome_back")
	h.respond(w, user, fmt.Sprintf(h.tr.Translate("Welcome back %s!", lang), user.FirstName), false)
}

func (h *Handlers) respond(w http.ResponseWriter, user *storage.User, message string, completeProfile bool) {
	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.log.WithError(err).Error("session token signing failed")
		httputil.WriteAPIError(w, err)
		return
	}

	httputil.WriteEnvelope(w, http.StatusOK, httputil.Envelope{
		Success:         true,
		Message:         message,
		CompleteProfile: &completeProfile,
		Data:            publicProfile(user),
		Token:           token,
	})
}

// publicProfile serializes the fields a client may see. Credential material
// never crosses this boundary.
func publicProfile(u *storage.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"fullName":  u.FullName(),
		"photoUrl":  u.PhotoURL,
		"phone":     u.Phone,
		"region":    u.Region,
		"provider":  u.Provider,
	}
}
