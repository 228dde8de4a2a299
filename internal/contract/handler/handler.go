// Package handler exposes contract endpoints over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/learningeconomy/consentflow/internal/contract/models"
	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	"github.com/learningeconomy/consentflow/internal/transport/http/shared"
	respond "github.com/learningeconomy/consentflow/internal/transport/http/json"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
	"github.com/learningeconomy/consentflow/pkg/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for contract operations.
type Service interface {
	Fetch(ctx context.Context, uri id.ContractURI) (*models.Contract, error)
	Register(ctx context.Context, contract *models.Contract) error
	ListByOwner(ctx context.Context, ownerID id.ProfileID) ([]*models.Contract, error)
}

// Handler handles contract endpoints.
type Handler struct {
	logger    *slog.Logger
	contracts Service
}

// New creates a new contract Handler.
func New(contracts Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, contracts: contracts}
}

// Register registers the contract routes with the chi router.
// Contract URIs contain slashes, so the URI travels path-escaped.
func (h *Handler) Register(r chi.Router) {
	r.Get("/contracts/{uri}", h.handleGetContract)
	r.Get("/contracts", h.handleListContracts)
	r.Post("/contracts", h.handleRegisterContract)
}

func (h *Handler) handleGetContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := url.PathUnescape(chi.URLParam(r, "uri"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed contract URI"))
		return
	}
	uri, err := id.ParseContractURI(raw)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid contract URI", err))
		return
	}

	contract, err := h.contracts.Fetch(ctx, uri)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to fetch contract",
			"request_id", middleware.GetRequestID(ctx),
			"contract_uri", uri.String(),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, contract)
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := id.ParseProfileID(middleware.GetProfileID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing profile context"))
		return
	}

	contracts, err := h.contracts.ListByOwner(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list contracts",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{"contracts": contracts})
}

// registerContractRequest is the authoring payload for a new contract.
type registerContractRequest struct {
	URI                  string              `json:"uri" validate:"required,notblank"`
	Name                 string              `json:"name" validate:"required,notblank"`
	Subtitle             string              `json:"subtitle"`
	Description          string              `json:"description"`
	ReasonForAccessing   string              `json:"reasonForAccessing"`
	Image                string              `json:"image" validate:"omitempty,url"`
	NeedsGuardianConsent bool                `json:"needsGuardianConsent"`
	RedirectURL          string              `json:"redirectUrl" validate:"omitempty,url"`
	Read                 models.AccessSchema `json:"read"`
	Write                models.AccessSchema `json:"write"`
	ExpiresAt            *time.Time          `json:"expiresAt"`
}

func (h *Handler) handleRegisterContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := id.ParseProfileID(middleware.GetProfileID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing profile context"))
		return
	}

	var body registerContractRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "failed to decode contract",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&body); err != nil {
		shared.WriteError(w, err)
		return
	}

	uri, err := id.ParseContractURI(body.URI)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid contract URI", err))
		return
	}

	contract, err := models.NewContract(uri, body.Name, ownerID, body.Read, body.Write, time.Now())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	contract.Subtitle = body.Subtitle
	contract.Description = body.Description
	contract.ReasonForAccessing = body.ReasonForAccessing
	contract.Image = body.Image
	contract.NeedsGuardianConsent = body.NeedsGuardianConsent
	contract.RedirectURL = body.RedirectURL
	contract.ExpiresAt = body.ExpiresAt

	if err := h.contracts.Register(ctx, contract); err != nil {
		shared.WriteError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, contract)
}
