package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

// DeliveryRepositoryInterface covers the campaign_emails table.
type DeliveryRepositoryInterface interface {
	Insert(ctx context.Context, rec *model.DeliveryRecord) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.DeliveryRecord, error)
	Stats(ctx context.Context, campaignID string) (*model.DeliveryStats, error)
}

type DeliveryRepository struct {
	DB *sql.DB
}

// Insert records one accepted message. Tracking flags start false.
func (r *DeliveryRepository) Insert(ctx context.Context, rec *model.DeliveryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}
	query := `
        INSERT INTO campaign_emails (id, campaign_id, contact_id, sent_at)
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.DB.ExecContext(ctx, query, rec.ID, rec.CampaignID, rec.ContactID, rec.SentAt)
	if err != nil {
		return translate(err, "delivery record")
	}
	return nil
}

func (r *DeliveryRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.DeliveryRecord, error) {
	query := `
        SELECT id, campaign_id, contact_id, sent_at, opened, opened_at, clicked, clicked_at, bounced, unsubscribed
        FROM campaign_emails
        WHERE campaign_id = $1
        ORDER BY sent_at, id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*model.DeliveryRecord{}
	for rows.Next() {
		var d model.DeliveryRecord
		if err := rows.Scan(
			&d.ID, &d.CampaignID, &d.ContactID, &d.SentAt, &d.Opened, &d.OpenedAt,
			&d.Clicked, &d.ClickedAt, &d.Bounced, &d.Unsubscribed,
		); err != nil {
			return nil, err
		}
		records = append(records, &d)
	}
	return records, rows.Err()
}

func (r *DeliveryRepository) Stats(ctx context.Context, campaignID string) (*model.DeliveryStats, error) {
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE opened),
               COUNT(*) FILTER (WHERE clicked)
        FROM campaign_emails
        WHERE campaign_id = $1
    `
	var s model.DeliveryStats
	if err := r.DB.QueryRowContext(ctx, query, campaignID).Scan(&s.Total, &s.Opened, &s.Clicked); err != nil {
		return nil, err
	}
	return &s, nil
}

var _ DeliveryRepositoryInterface = (*DeliveryRepository)(nil)
