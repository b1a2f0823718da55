package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

type ContactController struct {
	ContactService *service.ContactService
}

type contactBody struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Company    string `json:"company"`
	Phone      string `json:"phone"`
	Tags       string `json:"tags"`
	Subscribed *bool  `json:"subscribed"`
}

func (b contactBody) contact() *model.Contact {
	subscribed := true
	if b.Subscribed != nil {
		subscribed = *b.Subscribed
	}
	return &model.Contact{
		Email:      b.Email,
		FirstName:  b.FirstName,
		LastName:   b.LastName,
		Company:    b.Company,
		Phone:      b.Phone,
		Tags:       b.Tags,
		Subscribed: subscribed,
	}
}

func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	var body contactBody
	if !decode(w, r, &body) {
		return
	}
	contact := body.contact()
	if err := c.ContactService.Create(r.Context(), contact); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, contact)
}

func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := c.ContactService.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": contacts})
}

func (c *ContactController) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var body contactBody
	if !decode(w, r, &body) {
		return
	}
	contact := body.contact()
	contact.ID = chi.URLParam(r, "id")
	if err := c.ContactService.Update(r.Context(), contact); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, contact)
}

func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := c.ContactService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportContacts accepts {"contacts": [...]} rows already parsed by the client.
func (c *ContactController) ImportContacts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contacts []model.ContactImport `json:"contacts"`
	}
	if !decode(w, r, &body) {
		return
	}
	result, err := c.ContactService.Import(r.Context(), body.Contacts)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
