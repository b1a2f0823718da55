package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

type EmailTemplateRepositoryInterface interface {
	Create(ctx context.Context, t *model.EmailTemplate) error
	GetByID(ctx context.Context, id string) (*model.EmailTemplate, error)
	ListVisible(ctx context.Context, userID string) ([]*model.EmailTemplate, error)
	Delete(ctx context.Context, id string) error
}

type CampaignTemplateRepositoryInterface interface {
	Create(ctx context.Context, t *model.CampaignTemplate) error
	GetByID(ctx context.Context, id string) (*model.CampaignTemplate, error)
	List(ctx context.Context, category string) ([]*model.CampaignTemplate, error)
	Delete(ctx context.Context, id string) error
}

// ====================== Email templates ======================

type EmailTemplateRepository struct {
	DB *sql.DB
}

const emailTemplateColumns = `id, name, subject, html_content, created_by, is_public, created_at`

func scanEmailTemplate(row scanner) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.HTMLContent, &t.CreatedBy, &t.IsPublic, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *EmailTemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO email_templates (id, name, subject, html_content, created_by, is_public, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.Name, t.Subject, t.HTMLContent, t.CreatedBy, t.IsPublic, t.CreatedAt)
	if err != nil {
		return translate(err, "email template "+t.Name)
	}
	return nil
}

func (r *EmailTemplateRepository) GetByID(ctx context.Context, id string) (*model.EmailTemplate, error) {
	t, err := scanEmailTemplate(r.DB.QueryRowContext(ctx,
		`SELECT `+emailTemplateColumns+` FROM email_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewRecordNotFound("email template", id)
		}
		return nil, err
	}
	return t, nil
}

// ListVisible returns the user's own templates plus every public one.
func (r *EmailTemplateRepository) ListVisible(ctx context.Context, userID string) ([]*model.EmailTemplate, error) {
	query := `SELECT ` + emailTemplateColumns + ` FROM email_templates
        WHERE created_by = $1 OR is_public
        ORDER BY created_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*model.EmailTemplate{}
	for rows.Next() {
		t, err := scanEmailTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *EmailTemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewRecordNotFound("email template", id)
	}
	return nil
}

// ====================== Campaign templates ======================

type CampaignTemplateRepository struct {
	DB *sql.DB
}

const campaignTemplateColumns = `id, name, description, category, html_content, thumbnail, is_system, created_by, created_at`

func scanCampaignTemplate(row scanner) (*model.CampaignTemplate, error) {
	var t model.CampaignTemplate
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Category, &t.HTMLContent, &t.Thumbnail, &t.IsSystem, &t.CreatedBy, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *CampaignTemplateRepository) Create(ctx context.Context, t *model.CampaignTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO campaign_templates (id, name, description, category, html_content, thumbnail, is_system, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.Category, t.HTMLContent, t.Thumbnail, t.IsSystem, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return translate(err, "campaign template "+t.Name)
	}
	return nil
}

func (r *CampaignTemplateRepository) GetByID(ctx context.Context, id string) (*model.CampaignTemplate, error) {
	t, err := scanCampaignTemplate(r.DB.QueryRowContext(ctx,
		`SELECT `+campaignTemplateColumns+` FROM campaign_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewRecordNotFound("campaign template", id)
		}
		return nil, err
	}
	return t, nil
}

// List returns system templates first, newest first within each group.
// An empty category matches all.
func (r *CampaignTemplateRepository) List(ctx context.Context, category string) ([]*model.CampaignTemplate, error) {
	query := `SELECT ` + campaignTemplateColumns + ` FROM campaign_templates`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY is_system DESC, created_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*model.CampaignTemplate{}
	for rows.Next() {
		t, err := scanCampaignTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *CampaignTemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaign_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewRecordNotFound("campaign template", id)
	}
	return nil
}

var (
	_ EmailTemplateRepositoryInterface    = (*EmailTemplateRepository)(nil)
	_ CampaignTemplateRepositoryInterface = (*CampaignTemplateRepository)(nil)
)
