package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/controller"
	"github.com/unclebandit/campaign-mailer/internal/middleware"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

// ActivityHandler serves audit-log reads.
type ActivityHandler struct {
	Activity *service.ActivityService
}

// DashboardHandler is the owner-only overview.
func (h *ActivityHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFrom(r.Context())
	d, err := h.Activity.Dashboard(r.Context(), actor)
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}
	controller.WriteJSON(w, http.StatusOK, d)
}

func (h *ActivityHandler) UserActivityHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFrom(r.Context())
	a, err := h.Activity.UserActivity(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}
	controller.WriteJSON(w, http.StatusOK, a)
}

func (h *ActivityHandler) CampaignHistoryHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Activity.CampaignHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		controller.WriteError(w, r, err)
		return
	}
	controller.WriteJSON(w, http.StatusOK, map[string]any{"data": entries})
}
