// Package handler exposes consent lifecycle endpoints over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/learningeconomy/consentflow/internal/consent/models"
	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	"github.com/learningeconomy/consentflow/internal/transport/http/shared"
	respond "github.com/learningeconomy/consentflow/internal/transport/http/json"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for consent operations.
type Service interface {
	Grant(ctx context.Context, profileID id.ProfileID, req *models.GrantRequest) (*models.Record, error)
	UpdateTerms(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI, req *models.UpdateTermsRequest) (*models.Record, error)
	Withdraw(ctx context.Context, profileID id.ProfileID, uri id.ConsentURI) (*models.Record, error)
	List(ctx context.Context, profileID id.ProfileID) (*models.ListResponse, error)
}

// Handler handles consent endpoints.
type Handler struct {
	logger  *slog.Logger
	consent Service
}

// New creates a new consent Handler.
func New(consent Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, consent: consent}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/consents", h.handleGrant)
	r.Get("/consents", h.handleList)
	r.Post("/consents/{uri}/terms", h.handleUpdateTerms)
	r.Post("/consents/{uri}/withdraw", h.handleWithdraw)
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}

	var req models.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode grant request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.consent.Grant(ctx, profileID, &req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, toConsentResponse(record))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}

	resp, err := h.consent.List(ctx, profileID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list consents",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdateTerms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}
	uri, ok := h.consentURIFromPath(r, w)
	if !ok {
		return
	}

	var req models.UpdateTermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.consent.UpdateTerms(ctx, profileID, uri, &req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toConsentResponse(record))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.profileFromContext(ctx, w)
	if !ok {
		return
	}
	uri, ok := h.consentURIFromPath(r, w)
	if !ok {
		return
	}

	record, err := h.consent.Withdraw(ctx, profileID, uri)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, toConsentResponse(record))
}

func (h *Handler) profileFromContext(ctx context.Context, w http.ResponseWriter) (id.ProfileID, bool) {
	profileID, err := id.ParseProfileID(middleware.GetProfileID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "profile missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing profile context"))
		return id.ProfileID{}, false
	}
	return profileID, true
}

func (h *Handler) consentURIFromPath(r *http.Request, w http.ResponseWriter) (id.ConsentURI, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "uri"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed consent URI"))
		return "", false
	}
	uri, err := id.ParseConsentURI(raw)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid consent URI", err))
		return "", false
	}
	return uri, true
}

func toConsentResponse(record *models.Record) *models.ConsentWithStatus {
	return &models.ConsentWithStatus{
		URI:         record.URI.String(),
		ContractURI: record.ContractURI.String(),
		Terms:       record.Terms,
		Status:      record.ComputeStatus(time.Now()),
		OneTime:     record.OneTime,
		GrantedAt:   record.GrantedAt,
		UpdatedAt:   record.UpdatedAt,
		ExpiresAt:   record.ExpiresAt,
		WithdrawnAt: record.WithdrawnAt,
	}
}
