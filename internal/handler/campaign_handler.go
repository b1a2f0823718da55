// internal/handler/campaign_handler.go
package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/controller"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

// CampaignHandler serves read-only reporting for a campaign.
type CampaignHandler struct {
	Campaigns *service.CampaignService
	Responses *service.ResponseService
}

func NewCampaignHandler(campaigns *service.CampaignService, responses *service.ResponseService) *CampaignHandler {
	return &CampaignHandler{Campaigns: campaigns, Responses: responses}
}

// AnalyticsHandler returns delivery and response totals with rates.
func (h *CampaignHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Campaigns.Analytics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}
	controller.WriteJSON(w, http.StatusOK, analytics)
}

func (h *CampaignHandler) DeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.Campaigns.Deliveries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}
	controller.WriteJSON(w, http.StatusOK, map[string]any{"data": records})
}

// ResponsesHandler lists form responses. With ?format=csv the list is
// exported as a CSV attachment, one column per response field.
func (h *CampaignHandler) ResponsesHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	responses, err := h.Responses.List(r.Context(), id)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "csv" {
		controller.WriteJSON(w, http.StatusOK, map[string]any{"data": responses})
		return
	}

	fields, keys := responseFields(responses)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="responses-`+id+`.csv"`)
	cw := csv.NewWriter(w)
	cw.Write(append([]string{"contact_email", "submitted_at"}, keys...))
	for i, resp := range responses {
		row := []string{resp.ContactEmail, resp.SubmittedAt.UTC().Format(time.RFC3339)}
		for _, k := range keys {
			row = append(row, fields[i][k])
		}
		cw.Write(row)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.From(r.Context()).Warn("csv export interrupted", logger.CampaignID(id), logger.Err(err))
	}
}

// responseFields flattens each response object into column values and
// returns the sorted union of field names. Strings are written bare, other
// JSON values as JSON. Non-object responses contribute no columns.
func responseFields(responses []*model.FormResponse) ([]map[string]string, []string) {
	out := make([]map[string]string, len(responses))
	seen := map[string]bool{"contact_email": true, "submitted_at": true}
	var keys []string
	for i, resp := range responses {
		out[i] = map[string]string{}
		var obj map[string]json.RawMessage
		if json.Unmarshal(resp.ResponseData, &obj) != nil {
			continue
		}
		for k, raw := range obj {
			var str string
			if json.Unmarshal(raw, &str) == nil {
				out[i][k] = str
			} else {
				out[i][k] = string(raw)
			}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return out, keys
}
