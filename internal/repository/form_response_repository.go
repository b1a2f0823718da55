package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

type FormResponseRepositoryInterface interface {
	Create(ctx context.Context, resp *model.FormResponse) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.FormResponse, error)
	CountByCampaign(ctx context.Context, campaignID string) (int, error)
}

type FormResponseRepository struct {
	DB *sql.DB
}

func (r *FormResponseRepository) Create(ctx context.Context, resp *model.FormResponse) error {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if len(resp.ResponseData) == 0 {
		resp.ResponseData = []byte("{}")
	}
	resp.SubmittedAt = time.Now().UTC()
	query := `
        INSERT INTO form_responses (id, campaign_id, contact_email, response_data, submitted_at, ip_address)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.ExecContext(ctx, query,
		resp.ID, resp.CampaignID, resp.ContactEmail, []byte(resp.ResponseData), resp.SubmittedAt, resp.IPAddress,
	)
	if err != nil {
		return translate(err, "form response")
	}
	return nil
}

func (r *FormResponseRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.FormResponse, error) {
	query := `
        SELECT id, campaign_id, contact_email, response_data, submitted_at, ip_address
        FROM form_responses
        WHERE campaign_id = $1
        ORDER BY submitted_at DESC, id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []*model.FormResponse{}
	for rows.Next() {
		var fr model.FormResponse
		var data []byte
		if err := rows.Scan(&fr.ID, &fr.CampaignID, &fr.ContactEmail, &data, &fr.SubmittedAt, &fr.IPAddress); err != nil {
			return nil, err
		}
		fr.ResponseData = data
		responses = append(responses, &fr)
	}
	return responses, rows.Err()
}

func (r *FormResponseRepository) CountByCampaign(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM form_responses WHERE campaign_id = $1`, campaignID).Scan(&n)
	return n, err
}

var _ FormResponseRepositoryInterface = (*FormResponseRepository)(nil)
