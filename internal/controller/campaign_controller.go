// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Dispatcher      *service.Dispatcher
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !decode(w, r, &body) {
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), identity(r), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), identity(r), page, pageSize, status)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := c.CampaignService.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !decode(w, r, &body) {
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), identity(r), chi.URLParam(r, "id"), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.DeleteCampaign(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CampaignController) ScheduleCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScheduledFor time.Time `json:"scheduled_for"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.ScheduledFor.IsZero() {
		badRequest(w, "scheduled_for is required")
		return
	}

	campaign, err := c.CampaignService.Schedule(r.Context(), identity(r), chi.URLParam(r, "id"), body.ScheduledFor)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, campaign)
}

// SendCampaign runs the whole send before responding. The send is detached
// from the request so a client disconnect does not cut the batch short.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContactIDs    []string `json:"contact_ids"`
		ListID        string   `json:"list_id"`
		EmailConfigID string   `json:"email_config_id"`
	}
	if !decode(w, r, &body) {
		return
	}

	id := chi.URLParam(r, "id")
	result, err := c.Dispatcher.Send(context.WithoutCancel(r.Context()), identity(r), service.SendRequest{
		CampaignID:    id,
		ContactIDs:    body.ContactIDs,
		ListID:        body.ListID,
		EmailConfigID: body.EmailConfigID,
	})
	if err != nil && result == nil {
		WriteError(w, r, err)
		return
	}
	if err != nil {
		// Some emails may already be out; the counts are still reported.
		status, msg := errorMessage(r, err)
		WriteJSON(w, status, map[string]any{
			"error":       msg,
			"campaign_id": id,
			"sent":        result.Sent,
			"failed":      result.Failed,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"campaign_id": id,
		"sent":        result.Sent,
		"failed":      result.Failed,
	})
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContactID string `json:"contact_id"`
	}
	if !decode(w, r, &body) {
		return
	}

	rendered, err := c.CampaignService.RenderPreview(r.Context(), chi.URLParam(r, "id"), body.ContactID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"rendered_message": rendered,
		"contact_id":       body.ContactID,
	})
}

func (c *CampaignController) ShareCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.ShareInput
	if !decode(w, r, &body) {
		return
	}
	perm, err := c.CampaignService.Share(r.Context(), identity(r), chi.URLParam(r, "id"), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, perm)
}

func (c *CampaignController) UnshareCampaign(w http.ResponseWriter, r *http.Request) {
	err := c.CampaignService.Unshare(r.Context(), identity(r), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CampaignController) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := c.CampaignService.Permissions(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, perms)
}
