package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

type TemplateController struct {
	Library   *service.TemplateLibrary
	Campaigns *service.CampaignService
}

func (c *TemplateController) ListEmailTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.Library.ListEmailTemplates(r.Context(), identity(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": templates})
}

func (c *TemplateController) CreateEmailTemplate(w http.ResponseWriter, r *http.Request) {
	var body model.EmailTemplateInput
	if !decode(w, r, &body) {
		return
	}
	t, err := c.Library.CreateEmailTemplate(r.Context(), identity(r), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

func (c *TemplateController) DeleteEmailTemplate(w http.ResponseWriter, r *http.Request) {
	if err := c.Library.DeleteEmailTemplate(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCampaignTemplates accepts an optional ?category= filter.
func (c *TemplateController) ListCampaignTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := c.Library.ListCampaignTemplates(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": templates})
}

func (c *TemplateController) CreateCampaignTemplate(w http.ResponseWriter, r *http.Request) {
	var body model.CampaignTemplateInput
	if !decode(w, r, &body) {
		return
	}
	t, err := c.Library.CreateCampaignTemplate(r.Context(), identity(r), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

func (c *TemplateController) DeleteCampaignTemplate(w http.ResponseWriter, r *http.Request) {
	if err := c.Library.DeleteCampaignTemplate(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UseCampaignTemplate creates a draft campaign from a template. Fields left
// empty in the body are taken from the template.
func (c *TemplateController) UseCampaignTemplate(w http.ResponseWriter, r *http.Request) {
	var body service.CampaignInput
	if !decode(w, r, &body) {
		return
	}
	campaign, err := c.Library.CampaignFromTemplate(r.Context(), c.Campaigns, identity(r), chi.URLParam(r, "id"), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, campaign)
}
