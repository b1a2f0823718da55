package controller

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/campaign-mailer/internal/service"
)

// FormController serves the public form linked from every campaign email.
type FormController struct {
	ResponseService *service.ResponseService
}

func (c *FormController) ShowForm(w http.ResponseWriter, r *http.Request) {
	html, err := c.ResponseService.Form(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "contactID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// SubmitForm stores a response. JSON bodies are kept as sent; HTML form
// posts are converted to a JSON object of field -> value.
func (c *FormController) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var data json.RawMessage
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			badRequest(w, "invalid body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			badRequest(w, "invalid form")
			return
		}
		fields := map[string]string{}
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		data, _ = json.Marshal(fields)
	}

	resp, err := c.ResponseService.Submit(r.Context(), chi.URLParam(r, "campaignID"), chi.URLParam(r, "contactID"), data, clientIP(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, resp)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
