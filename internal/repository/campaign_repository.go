package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context, f CampaignFilter) ([]*model.Campaign, int, error)
	Update(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, id string) error

	// Status changes
	Schedule(ctx context.Context, id string, when time.Time) error
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
}

// CampaignFilter narrows a campaign listing. Zero values mean "any".
type CampaignFilter struct {
	CreatedBy string
	// VisibleTo keeps campaigns the user created or was granted view access to.
	VisibleTo string
	Status    string
	Offset    int
	Limit     int
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, description, form_html, status, created_by, subject_line,
        scheduled_for, sent_at, created_at, updated_at`

func scanCampaign(row scanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.FormHTML, &c.Status, &c.CreatedBy, &c.SubjectLine,
		&c.ScheduledFor, &c.SentAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	c.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO campaigns (id, name, description, form_html, status, created_by, subject_line, scheduled_for, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Description, c.FormHTML, c.Status, c.CreatedBy, c.SubjectLine, c.ScheduledFor, c.CreatedAt,
	)
	if err != nil {
		return translate(err, "campaign")
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, f CampaignFilter) ([]*model.Campaign, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argPos := 1

	if f.CreatedBy != "" {
		where += fmt.Sprintf(" AND created_by = $%d", argPos)
		args = append(args, f.CreatedBy)
		argPos++
	}
	if f.VisibleTo != "" {
		where += fmt.Sprintf(` AND (created_by = $%d OR EXISTS (
            SELECT 1 FROM campaign_permissions p
            WHERE p.campaign_id = campaigns.id AND p.user_id = $%d AND p.can_view))`, argPos, argPos)
		args = append(args, f.VisibleTo)
		argPos++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, f.Status)
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, rows.Err()
}

// Update writes content fields only. Status moves through Schedule and MarkSent.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	now := time.Now().UTC()
	query := `
        UPDATE campaigns
        SET name = $1, description = $2, form_html = $3, subject_line = $4, updated_at = $5
        WHERE id = $6
    `
	res, err := r.DB.ExecContext(ctx, query, c.Name, c.Description, c.FormHTML, c.SubjectLine, now, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	c.UpdatedAt = &now
	return nil
}

// Delete removes the campaign; its delivery rows and responses go with it.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return translate(err, "campaign")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

// ====================== Status changes ======================

func (r *CampaignRepository) Schedule(ctx context.Context, id string, when time.Time) error {
	query := `
        UPDATE campaigns
        SET status = $1, scheduled_for = $2, updated_at = NOW()
        WHERE id = $3 AND status <> $4
    `
	res, err := r.DB.ExecContext(ctx, query, model.StatusScheduled, when, id, model.StatusSent)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Nothing matched: either the row is gone or it is already SENT.
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return appErrors.NewInvalidState(id, string(c.Status), "schedule")
}

// MarkSent moves a campaign into SENT, stamping sent_at and clearing
// scheduled_for. It reports false when the campaign was already SENT.
func (r *CampaignRepository) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
        UPDATE campaigns
        SET status = $1, sent_at = $2, scheduled_for = NULL, updated_at = $2
        WHERE id = $3 AND status <> $1
    `
	res, err := r.DB.ExecContext(ctx, query, model.StatusSent, at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
