// Package handler exposes flow resolution over HTTP, including the deep-link
// entry point that arrives as a GET with query parameters.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	"github.com/learningeconomy/consentflow/internal/resolver"
	"github.com/learningeconomy/consentflow/internal/transport/http/shared"
	respond "github.com/learningeconomy/consentflow/internal/transport/http/json"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for flow resolution.
type Service interface {
	Resolve(ctx context.Context, profileID id.ProfileID, req resolver.ResolveRequest) (*resolver.Resolution, error)
	OpenConsentFlow(ctx context.Context, profileID id.ProfileID, req resolver.ResolveRequest, opts resolver.OpenOptions) (*resolver.Outcome, error)
}

// Handler handles flow resolution endpoints.
type Handler struct {
	logger   *slog.Logger
	resolver Service
}

// New creates a new flow Handler.
func New(r Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, resolver: r}
}

// Register registers the flow routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/flows/resolve", h.handleResolve)
	r.Post("/flows/open", h.handleOpen)
	r.Get("/flows/open", h.handleOpenDeepLink)
}

type resolveRequest struct {
	ContractURI string           `json:"contractUri"`
	App         *resolver.AppRef `json:"app,omitempty"`
}

type resolveResponse struct {
	HasConsented bool   `json:"hasConsented"`
	ContractURI  string `json:"contractUri,omitempty"`
	ConsentURI   string `json:"consentUri,omitempty"`
	Resolved     bool   `json:"resolved"`
}

type openRequest struct {
	resolveRequest
	HideProfileButton bool `json:"hideProfileButton,omitempty"`
}

type openResponse struct {
	Presented bool   `json:"presented"`
	Flow      string `json:"flow,omitempty"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resolution, err := h.resolver.Resolve(ctx, profileID, resolver.ResolveRequest{
		ContractURI: id.ContractURI(req.ContractURI),
		App:         req.App,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := resolveResponse{
		HasConsented: resolution.HasConsented,
		Resolved:     resolution.Contract != nil,
	}
	if resolution.Contract != nil {
		resp.ContractURI = resolution.Contract.URI.String()
	}
	if resolution.Consented != nil {
		resp.ConsentURI = resolution.Consented.URI.String()
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}

	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	h.open(ctx, w, profileID,
		resolver.ResolveRequest{ContractURI: id.ContractURI(req.ContractURI), App: req.App},
		resolver.OpenOptions{HideProfileButton: req.HideProfileButton, App: req.App},
	)
}

// handleOpenDeepLink serves links of the form
// /flows/open?contractUri=...&hideProfileButton=true. The legacy `uri` key is
// accepted as an alias for contractUri.
func (h *Handler) handleOpenDeepLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}

	q := r.URL.Query()
	contractURI := q.Get("contractUri")
	if contractURI == "" {
		contractURI = q.Get("uri")
	}
	hideProfile, _ := strconv.ParseBool(q.Get("hideProfileButton"))

	var app *resolver.AppRef
	if appID := q.Get("appId"); appID != "" {
		app = &resolver.AppRef{ID: appID, Name: q.Get("appName")}
	}

	h.open(ctx, w, profileID,
		resolver.ResolveRequest{ContractURI: id.ContractURI(contractURI), App: app},
		resolver.OpenOptions{HideProfileButton: hideProfile, App: app},
	)
}

func (h *Handler) open(ctx context.Context, w http.ResponseWriter, profileID id.ProfileID, req resolver.ResolveRequest, opts resolver.OpenOptions) {
	outcome, err := h.resolver.OpenConsentFlow(ctx, profileID, req, opts)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open consent flow",
			"request_id", middleware.GetRequestID(ctx),
			"contract_uri", req.ContractURI.String(),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, openResponse{
		Presented: outcome.Presented,
		Flow:      string(outcome.Kind),
	})
}

func (h *Handler) profileFromContext(ctx context.Context, w http.ResponseWriter) (id.ProfileID, bool) {
	profileID, err := id.ParseProfileID(middleware.GetProfileID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing profile context"))
		return id.ProfileID{}, false
	}
	return profileID, true
}
