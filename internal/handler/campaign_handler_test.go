package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/handler"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

type stubCampaigns struct {
	repository.CampaignRepositoryInterface
}

func (stubCampaigns) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	if id != "c-1" {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	return &model.Campaign{ID: id, Status: model.StatusSent}, nil
}

type stubDeliveries struct {
	repository.DeliveryRepositoryInterface
}

func (stubDeliveries) Stats(ctx context.Context, campaignID string) (*model.DeliveryStats, error) {
	return &model.DeliveryStats{Total: 3, Opened: 2, Clicked: 1}, nil
}

type stubResponses struct {
	repository.FormResponseRepositoryInterface
}

var submitted = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func (stubResponses) ListByCampaign(ctx context.Context, campaignID string) ([]*model.FormResponse, error) {
	return []*model.FormResponse{
		{
			ID:           "r-1",
			CampaignID:   campaignID,
			ContactEmail: "alice@example.com",
			ResponseData: json.RawMessage(`{"rating":"5"}`),
			SubmittedAt:  submitted,
			IPAddress:    "203.0.113.9",
		},
		{
			ID:           "r-2",
			CampaignID:   campaignID,
			ContactEmail: "bob@example.com",
			ResponseData: json.RawMessage(`{"comment":"fast, friendly","rating":4,"tags":["a","b"]}`),
			SubmittedAt:  submitted.Add(time.Hour),
		},
	}, nil
}

func (stubResponses) CountByCampaign(ctx context.Context, campaignID string) (int, error) {
	return 2, nil
}

func newRouter() http.Handler {
	h := handler.NewCampaignHandler(
		&service.CampaignService{CampaignRepo: stubCampaigns{}, DeliveryRepo: stubDeliveries{}, ResponseRepo: stubResponses{}},
		&service.ResponseService{CampaignRepo: stubCampaigns{}, ResponseRepo: stubResponses{}},
	)
	r := chi.NewRouter()
	r.Get("/campaigns/{id}/analytics", h.AnalyticsHandler)
	r.Get("/campaigns/{id}/responses", h.ResponsesHandler)
	return r
}

func TestAnalyticsHandler(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/c-1/analytics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got model.CampaignAnalytics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalSent)
	assert.Equal(t, 66.67, got.OpenRate)
	assert.Equal(t, 33.33, got.ClickRate)
	assert.Equal(t, 66.67, got.ResponseRate)
}

func TestAnalyticsUnknownCampaign(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/missing/analytics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResponsesCSVExport(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/c-1/responses?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "responses-c-1.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"contact_email", "submitted_at", "comment", "rating", "tags"}, records[0])
	assert.Equal(t, []string{"alice@example.com", "2026-03-01T09:30:00Z", "", "5", ""}, records[1])
	assert.Equal(t, []string{"bob@example.com", "2026-03-01T10:30:00Z", "fast, friendly", "4", `["a","b"]`}, records[2])
}

func TestResponsesJSON(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/campaigns/c-1/responses", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []model.FormResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "r-1", body.Data[0].ID)
}
