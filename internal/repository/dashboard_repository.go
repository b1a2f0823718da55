package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

type DashboardRepositoryInterface interface {
	Stats(ctx context.Context) (*model.SystemStats, error)
	UserSummaries(ctx context.Context) ([]*model.UserSummary, error)
}

// DashboardRepository runs the read-only aggregate queries behind the
// owner dashboard.
type DashboardRepository struct {
	DB *sql.DB
}

func (r *DashboardRepository) Stats(ctx context.Context) (*model.SystemStats, error) {
	query := `
        SELECT (SELECT COUNT(*) FROM users),
               (SELECT COUNT(*) FROM campaigns),
               (SELECT COUNT(*) FROM contacts),
               (SELECT COUNT(*) FROM form_responses)
    `
	var s model.SystemStats
	if err := r.DB.QueryRowContext(ctx, query).Scan(
		&s.TotalUsers, &s.TotalCampaigns, &s.TotalContacts, &s.TotalResponses,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *DashboardRepository) UserSummaries(ctx context.Context) ([]*model.UserSummary, error) {
	query := `
        SELECT u.id, u.email, u.name, u.role, u.twofa_enabled, u.last_login, u.created_at,
               (SELECT COUNT(*) FROM campaigns c WHERE c.created_by = u.id),
               (SELECT COUNT(*) FROM audit_logs a WHERE a.user_id = u.id)
        FROM users u
        ORDER BY u.created_at DESC, u.id
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*model.UserSummary{}
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(
			&s.ID, &s.Email, &s.Name, &s.Role, &s.TwoFAEnabled, &s.LastLogin, &s.CreatedAt,
			&s.CampaignsCreated, &s.TotalActions,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

var _ DashboardRepositoryInterface = (*DashboardRepository)(nil)
