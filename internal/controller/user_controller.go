package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/service"
)

type UserController struct {
	UserService *service.UserService
}

func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var body service.UserInput
	if !decode(w, r, &body) {
		return
	}
	u, err := c.UserService.CreateUser(r.Context(), identity(r), body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.UserService.ListUsers(r.Context(), identity(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": users})
}

// Me returns the authenticated user.
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	u, err := c.UserService.GetUser(r.Context(), identity(r).UserID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := c.UserService.DeleteUser(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
