// internal/service/template_service.go
package service

import (
	"html"
	"sort"
	"strings"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

// RenderTemplate replaces every {{key}} in template with data[key] in a
// single pass, so substituted values are never themselves expanded.
// Tokens without an entry in data are left as they are.
func RenderTemplate(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// RecipientTokens are the per-contact values a campaign body may reference.
// Values are HTML-escaped because they land inside an HTML document.
func RecipientTokens(contact *model.Contact, formURL string) map[string]string {
	return map[string]string{
		"first_name": html.EscapeString(contact.FirstName),
		"last_name":  html.EscapeString(contact.LastName),
		"email":      html.EscapeString(contact.Email),
		"company":    html.EscapeString(contact.Company),
		"form_url":   html.EscapeString(formURL),
	}
}

// RenderEmail builds the HTML body sent to one contact: a greeting, a link
// to the hosted form and the campaign body. It is a pure function.
func RenderEmail(formHTML string, contact *model.Contact, formURL string) string {
	tokens := RecipientTokens(contact, formURL)

	var b strings.Builder
	b.WriteString("<p>Hello ")
	b.WriteString(tokens["first_name"])
	b.WriteString(",</p>")
	b.WriteString("<p>Please complete the following form:</p>")
	b.WriteString(`<p><a href="`)
	b.WriteString(tokens["form_url"])
	b.WriteString(`">Click here to open the form</a></p>`)
	b.WriteString("<br><div>")
	b.WriteString(RenderTemplate(formHTML, tokens))
	b.WriteString("</div>")
	return b.String()
}

// FormURL is the hosted form link for one recipient of a campaign.
func FormURL(base, campaignID, contactID string) string {
	return strings.TrimRight(base, "/") + "/form/" + campaignID + "/" + contactID
}
