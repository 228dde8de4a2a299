// Package handler exposes boost issuance over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/learningeconomy/consentflow/internal/boost/models"
	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	"github.com/learningeconomy/consentflow/internal/policy"
	"github.com/learningeconomy/consentflow/internal/transport/http/shared"
	respond "github.com/learningeconomy/consentflow/internal/transport/http/json"
	id "github.com/learningeconomy/consentflow/pkg/domain"
	dErrors "github.com/learningeconomy/consentflow/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for boost operations.
type Service interface {
	IssueToRecipients(ctx context.Context, req *models.IssueRequest) (*models.IssueResponse, error)
}

// Handler handles boost endpoints.
type Handler struct {
	logger *slog.Logger
	boosts Service
}

// New creates a new boost Handler.
func New(boosts Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, boosts: boosts}
}

// Register registers the boost routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/boosts/issue", h.handleIssue)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if middleware.GetProfileID(ctx) == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing profile context"))
		return
	}

	// Issuance carries no consent standing of its own, so a child profile
	// always routes through a guardian.
	profileType := id.ProfileType(middleware.GetProfileType(ctx))
	if policy.Route(profileType, false, false) == policy.ActGuardianPermission {
		shared.WriteError(w, dErrors.New(dErrors.CodeGuardianRequired, "guardian permission required for issuance"))
		return
	}

	var req models.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode issue request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.boosts.IssueToRecipients(ctx, &req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	respond.WriteJSON(w, status, resp)
}
