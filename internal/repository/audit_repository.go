package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

type AuditRepositoryInterface interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditLog, error)
	ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.AuditLog, error)
}

type AuditRepository struct {
	DB *sql.DB
}

func (r *AuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.Details, entry.CreatedAt,
	)
	return err
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditLog, error) {
	query := `
        SELECT id, user_id, action, entity_type, entity_id, details, created_at
        FROM audit_logs
        WHERE entity_type = $1 AND entity_id = $2
        ORDER BY created_at, id
    `
	rows, err := r.DB.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.AuditLog{}
	for rows.Next() {
		var a model.AuditLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

const auditWithUser = `
        SELECT a.id, a.user_id, a.action, a.entity_type, a.entity_id, a.details, a.created_at,
               COALESCE(u.name, ''), COALESCE(u.email, '')
        FROM audit_logs a
        LEFT JOIN users u ON u.id = a.user_id`

// ListRecent returns the newest entries across all users, joined with
// the acting user's name and email.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	return r.listJoined(ctx, auditWithUser+` ORDER BY a.created_at DESC, a.id LIMIT $1`, limit)
}

func (r *AuditRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*model.AuditLog, error) {
	return r.listJoined(ctx, auditWithUser+` WHERE a.user_id = $1 ORDER BY a.created_at DESC, a.id LIMIT $2`, userID, limit)
}

func (r *AuditRepository) listJoined(ctx context.Context, query string, args ...any) ([]*model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.AuditLog{}
	for rows.Next() {
		var a model.AuditLog
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Details, &a.CreatedAt, &a.UserName, &a.UserEmail,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

var _ AuditRepositoryInterface = (*AuditRepository)(nil)
