package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

type EmailConfigController struct {
	Resolver *service.ConfigResolver
}

// emailConfigBody accepts the password, which model.EmailConfig never serializes.
type emailConfigBody struct {
	Name         string `json:"name"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`
	IsDefault    bool   `json:"is_default"`
	DailyLimit   int    `json:"daily_limit"`
}

func (b emailConfigBody) config() *model.EmailConfig {
	return &model.EmailConfig{
		Name:         b.Name,
		SMTPHost:     b.SMTPHost,
		SMTPPort:     b.SMTPPort,
		SMTPUser:     b.SMTPUser,
		SMTPPassword: b.SMTPPassword,
		FromEmail:    b.FromEmail,
		FromName:     b.FromName,
		IsDefault:    b.IsDefault,
		DailyLimit:   b.DailyLimit,
	}
}

func (c *EmailConfigController) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := c.Resolver.List(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": configs})
}

func (c *EmailConfigController) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var body emailConfigBody
	if !decode(w, r, &body) {
		return
	}
	cfg := body.config()
	if err := c.Resolver.Create(r.Context(), identity(r), cfg); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, cfg)
}

func (c *EmailConfigController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var body emailConfigBody
	if !decode(w, r, &body) {
		return
	}
	cfg := body.config()
	cfg.ID = chi.URLParam(r, "id")
	if err := c.Resolver.Update(r.Context(), identity(r), cfg); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

func (c *EmailConfigController) SetDefault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.Resolver.SetDefault(r.Context(), identity(r), id); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"id": id, "is_default": true})
}
