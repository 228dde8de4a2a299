package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/learningeconomy/consentflow/internal/boost/handler/mocks"
	"github.com/learningeconomy/consentflow/internal/boost/models"
	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	id "github.com/learningeconomy/consentflow/pkg/domain"
)

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	h := New(mockService, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func issueRequest(t *testing.T, profileType id.ProfileType, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/boosts/issue", bytes.NewReader(raw))
	ctx := context.WithValue(req.Context(), middleware.ContextKeyProfileID, uuid.NewString())
	ctx = context.WithValue(ctx, middleware.ContextKeyProfileType, string(profileType))
	return req.WithContext(ctx)
}

func TestHandleIssue(t *testing.T) {
	body := models.IssueRequest{
		BoostURI:   "lc:network/boosts/b1",
		Recipients: []string{uuid.NewString(), uuid.NewString()},
	}

	t.Run("200 - all recipients issued", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().IssueToRecipients(gomock.Any(), gomock.Any()).Return(&models.IssueResponse{
			BoostURI: body.BoostURI,
			Results: []models.RecipientResult{
				{ProfileID: id.ProfileID(uuid.MustParse(body.Recipients[0])), CredentialURI: "lc:network/credentials/x"},
				{ProfileID: id.ProfileID(uuid.MustParse(body.Recipients[1])), CredentialURI: "lc:network/credentials/y"},
			},
			Issued: 2,
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, issueRequest(t, id.ProfileTypeAdult, body))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("207 - partial failure", func(t *testing.T) {
		router, svc := newTestRouter(t)
		svc.EXPECT().IssueToRecipients(gomock.Any(), gomock.Any()).Return(&models.IssueResponse{
			BoostURI: body.BoostURI,
			Results: []models.RecipientResult{
				{ProfileID: id.ProfileID(uuid.MustParse(body.Recipients[0])), CredentialURI: "lc:network/credentials/x"},
				{ProfileID: id.ProfileID(uuid.MustParse(body.Recipients[1])), Error: "recipient unreachable"},
			},
			Issued: 1,
			Failed: 1,
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, issueRequest(t, id.ProfileTypeAdult, body))

		assert.Equal(t, http.StatusMultiStatus, w.Code)
		var resp models.IssueResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Failed)
	})

	t.Run("403 - child profile routes to guardian", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, issueRequest(t, id.ProfileTypeChild, body))

		assert.Equal(t, http.StatusForbidden, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "guardian_consent_required", resp["error"])
	})

	t.Run("401 - missing profile", func(t *testing.T) {
		router, _ := newTestRouter(t)

		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/boosts/issue", bytes.NewReader(raw))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
