// Package httpapi exposes the gateway's REST surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/cryptoboard/gateway/internal/auth"
	domain "github.com/cryptoboard/gateway/internal/domain/feed"
	"github.com/cryptoboard/gateway/internal/domain/user"
	"github.com/cryptoboard/gateway/internal/domain/vote"
	feedsvc "github.com/cryptoboard/gateway/internal/feed"
	"github.com/cryptoboard/gateway/internal/middleware"
	"github.com/cryptoboard/gateway/internal/storage"
	"github.com/cryptoboard/gateway/pkg/logger"
)

const recentVotesLimit = 20

// Handler bundles the HTTP endpoints over the gateway services.
type Handler struct {
	credentials *auth.Service
	store       storage.Store
	feed        *feedsvc.Service
	log         *logger.Logger
}

// New constructs the API handler.
func New(credentials *auth.Service, store storage.Store, feed *feedsvc.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	return &Handler{
		credentials: credentials,
		store:       store,
		feed:        feed,
		log:         log,
	}
}

// Router builds the route table. Identity enforcement is per route: account
// endpoints require it, voting and insight accept anonymous callers.
func (h *Handler) Router(authMW *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.login).Methods(http.MethodPost)
	api.Handle("/me", authMW.Require(http.HandlerFunc(h.me))).Methods(http.MethodGet)
	api.Handle("/onboarding", authMW.Require(http.HandlerFunc(h.onboarding))).Methods(http.MethodPost)

	api.HandleFunc("/prices", h.section(domain.SectionPrices)).Methods(http.MethodGet)
	api.HandleFunc("/news", h.section(domain.SectionNews)).Methods(http.MethodGet)
	api.Handle("/insight", authMW.Optional(http.HandlerFunc(h.section(domain.SectionInsight)))).Methods(http.MethodGet)
	api.HandleFunc("/meme", h.section(domain.SectionMeme)).Methods(http.MethodGet)
	api.Handle("/feed", authMW.Optional(http.HandlerFunc(h.fullFeed))).Methods(http.MethodGet)

	api.Handle("/vote", authMW.Optional(http.HandlerFunc(h.vote))).Methods(http.MethodPost)
	api.Handle("/votes", authMW.Optional(http.HandlerFunc(h.votes))).Methods(http.MethodGet)

	return r
}

// --- auth & account ---------------------------------------------------------

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing fields"))
		return
	}

	hash, err := h.credentials.HashPassword(payload.Password)
	if err != nil {
		h.serverError(w, r, err, "hash password")
		return
	}

	created, err := h.store.CreateUser(r.Context(), user.User{
		Name:         payload.Name,
		Email:        payload.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, fmt.Errorf("user exists"))
			return
		}
		h.serverError(w, r, err, "create user")
		return
	}

	token, err := h.credentials.Issue(created)
	if err != nil {
		h.serverError(w, r, err, "issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  created,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing fields"))
		return
	}

	u, err := h.store.GetUserByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Same response, and the same hashing cost, as a bad password so
			// neither the body nor the timing reveals which emails exist.
			h.credentials.DummyCompare(payload.Password)
			writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
			return
		}
		h.serverError(w, r, err, "look up user")
		return
	}
	if !h.credentials.CheckPassword(payload.Password, u.PasswordHash) {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"))
		return
	}

	token, err := h.credentials.Issue(u)
	if err != nil {
		h.serverError(w, r, err, "issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  h.withPreferences(r, u),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	u, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("user not found"))
			return
		}
		h.serverError(w, r, err, "look up user")
		return
	}

	writeJSON(w, http.StatusOK, h.withPreferences(r, u))
}

func (h *Handler) onboarding(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var payload struct {
		InvestorType string   `json:"investorType"`
		ContentType  string   `json:"contentType"`
		CryptoAssets []string `json:"cryptoAssets"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	prefs := user.Preferences{
		UserID:       userID,
		InvestorType: strings.TrimSpace(payload.InvestorType),
		ContentType:  strings.TrimSpace(payload.ContentType),
		CryptoAssets: user.NormalizeAssets(payload.CryptoAssets),
	}
	if _, err := h.store.UpsertPreferences(r.Context(), prefs); err != nil {
		h.serverError(w, r, err, "save preferences")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// withPreferences folds stored onboarding fields into the user payload. A
// user who has not onboarded yet simply gets them empty.
func (h *Handler) withPreferences(r *http.Request, u user.User) user.User {
	prefs, err := h.store.GetPreferences(r.Context(), u.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNoPreferences) {
			h.log.WithError(err).WithField("user_id", u.ID).Warn("preference lookup failed")
		}
		return u
	}
	u.InvestorType = prefs.InvestorType
	u.ContentType = prefs.ContentType
	u.CryptoAssets = prefs.CryptoAssets
	return u
}

// --- feed -------------------------------------------------------------------

func (h *Handler) section(section domain.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.feed.Refresh(r.Context(), section)
		if err != nil {
			h.serverError(w, r, err, "refresh section")
			return
		}
		writeJSON(w, http.StatusOK, res.Payload)
	}
}

func (h *Handler) fullFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.RefreshAll(r.Context()))
}

// --- votes ------------------------------------------------------------------

func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Section domain.Section `json:"section"`
		Value   int            `json:"value"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}
	if !domain.ValidSection(payload.Section) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid section"))
		return
	}
	if !vote.ValidValue(payload.Value) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid value"))
		return
	}

	v := vote.Vote{Section: payload.Section, Value: payload.Value}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		v.UserID = &userID
	}

	if _, err := h.store.AddVote(r.Context(), v); err != nil {
		h.serverError(w, r, err, "record vote")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) votes(w http.ResponseWriter, r *http.Request) {
	var (
		votes []vote.Vote
		err   error
	)
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		votes, err = h.store.ListVotesByUser(r.Context(), userID, recentVotesLimit)
	} else {
		votes, err = h.store.ListRecentVotes(r.Context(), recentVotesLimit)
	}
	if err != nil {
		h.serverError(w, r, err, "list votes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": votes})
}

// --- misc -------------------------------------------------------------------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "gateway",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// serverError logs full detail for operators and returns a generic body to
// the caller.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error, op string) {
	h.log.WithError(err).WithFields(map[string]interface{}{
		"op":   op,
		"path": r.URL.Path,
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, fmt.Errorf("server error"))
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
