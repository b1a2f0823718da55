package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

type ContactListController struct {
	Lists *service.ContactListService
}

func (c *ContactListController) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := c.Lists.List(r.Context(), identity(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": lists})
}

func (c *ContactListController) CreateList(w http.ResponseWriter, r *http.Request) {
	var body model.ContactListInput
	if !decode(w, r, &body) {
		return
	}
	l, err := c.Lists.Create(r.Context(), identity(r), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, l)
}

func (c *ContactListController) DeleteList(w http.ResponseWriter, r *http.Request) {
	if err := c.Lists.Delete(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddContacts takes {"contact_ids": [...]} and reports how many were added.
func (c *ContactListController) AddContacts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContactIDs []string `json:"contact_ids"`
	}
	if !decode(w, r, &body) {
		return
	}
	res, err := c.Lists.AddContacts(r.Context(), identity(r), chi.URLParam(r, "id"), body.ContactIDs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (c *ContactListController) ListMembers(w http.ResponseWriter, r *http.Request) {
	contacts, err := c.Lists.Members(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": contacts})
}
