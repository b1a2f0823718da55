package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

type CampaignPermissionRepositoryInterface interface {
	Grant(ctx context.Context, p *model.CampaignPermission) error
	Get(ctx context.Context, campaignID, userID string) (*model.CampaignPermission, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.CampaignPermission, error)
	Revoke(ctx context.Context, campaignID, userID string) error
}

type CampaignPermissionRepository struct {
	DB *sql.DB
}

// Grant creates the permission or overwrites the flags of an existing one.
// An unknown user is reported as not found.
func (r *CampaignPermissionRepository) Grant(ctx context.Context, p *model.CampaignPermission) error {
	p.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO campaign_permissions (campaign_id, user_id, can_view, can_edit, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (campaign_id, user_id)
        DO UPDATE SET can_view = EXCLUDED.can_view, can_edit = EXCLUDED.can_edit
    `
	if _, err := r.DB.ExecContext(ctx, query, p.CampaignID, p.UserID, p.CanView, p.CanEdit, p.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return appErrors.NewUserNotFound(p.UserID)
		}
		return translate(err, "campaign permission")
	}
	return nil
}

func (r *CampaignPermissionRepository) Get(ctx context.Context, campaignID, userID string) (*model.CampaignPermission, error) {
	query := `
        SELECT campaign_id, user_id, can_view, can_edit, created_at
        FROM campaign_permissions
        WHERE campaign_id = $1 AND user_id = $2
    `
	var p model.CampaignPermission
	err := r.DB.QueryRowContext(ctx, query, campaignID, userID).
		Scan(&p.CampaignID, &p.UserID, &p.CanView, &p.CanEdit, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewRecordNotFound("campaign permission", campaignID+"/"+userID)
		}
		return nil, err
	}
	return &p, nil
}

func (r *CampaignPermissionRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.CampaignPermission, error) {
	query := `
        SELECT campaign_id, user_id, can_view, can_edit, created_at
        FROM campaign_permissions
        WHERE campaign_id = $1
        ORDER BY created_at, user_id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := []*model.CampaignPermission{}
	for rows.Next() {
		var p model.CampaignPermission
		if err := rows.Scan(&p.CampaignID, &p.UserID, &p.CanView, &p.CanEdit, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, &p)
	}
	return perms, rows.Err()
}

func (r *CampaignPermissionRepository) Revoke(ctx context.Context, campaignID, userID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM campaign_permissions WHERE campaign_id = $1 AND user_id = $2`, campaignID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewRecordNotFound("campaign permission", campaignID+"/"+userID)
	}
	return nil
}

var _ CampaignPermissionRepositoryInterface = (*CampaignPermissionRepository)(nil)
