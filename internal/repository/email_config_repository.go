package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/campaign-mailer/internal/db"
	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

type EmailConfigRepositoryInterface interface {
	Create(ctx context.Context, cfg *model.EmailConfig) error
	GetByID(ctx context.Context, id string) (*model.EmailConfig, error)
	GetDefault(ctx context.Context) (*model.EmailConfig, error)
	List(ctx context.Context) ([]*model.EmailConfig, error)
	Update(ctx context.Context, cfg *model.EmailConfig) error
	SetDefault(ctx context.Context, id string) error
}

type EmailConfigRepository struct {
	DB *sql.DB
}

// defaultConfigLock is the advisory lock key serializing default changes.
const defaultConfigLock int64 = 0x656d6c63

const emailConfigColumns = `id, name, smtp_host, smtp_port, smtp_user, smtp_password, from_email, from_name,
        is_default, daily_limit, created_at, updated_at`

func scanEmailConfig(row scanner) (*model.EmailConfig, error) {
	var c model.EmailConfig
	if err := row.Scan(
		&c.ID, &c.Name, &c.SMTPHost, &c.SMTPPort, &c.SMTPUser, &c.SMTPPassword, &c.FromEmail, &c.FromName,
		&c.IsDefault, &c.DailyLimit, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func lockDefault(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, defaultConfigLock)
	return err
}

func clearDefault(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE email_configs SET is_default = FALSE WHERE is_default`)
	return err
}

// Create inserts a configuration. A new default replaces the old one in
// the same transaction.
func (r *EmailConfigRepository) Create(ctx context.Context, cfg *model.EmailConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = model.DefaultDailyLimit
	}
	now := time.Now().UTC()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if cfg.IsDefault {
			if err := lockDefault(ctx, tx); err != nil {
				return err
			}
			if err := clearDefault(ctx, tx); err != nil {
				return err
			}
		}
		query := `
            INSERT INTO email_configs (id, name, smtp_host, smtp_port, smtp_user, smtp_password, from_email,
                from_name, is_default, daily_limit, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        `
		_, err := tx.ExecContext(ctx, query,
			cfg.ID, cfg.Name, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail,
			cfg.FromName, cfg.IsDefault, cfg.DailyLimit, cfg.CreatedAt, cfg.UpdatedAt,
		)
		return translate(err, "email configuration")
	})
}

func (r *EmailConfigRepository) GetByID(ctx context.Context, id string) (*model.EmailConfig, error) {
	c, err := scanEmailConfig(r.DB.QueryRowContext(ctx, `SELECT `+emailConfigColumns+` FROM email_configs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewConfigNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *EmailConfigRepository) GetDefault(ctx context.Context) (*model.EmailConfig, error) {
	c, err := scanEmailConfig(r.DB.QueryRowContext(ctx, `SELECT `+emailConfigColumns+` FROM email_configs WHERE is_default LIMIT 1`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoDefaultConfig
		}
		return nil, err
	}
	return c, nil
}

// List returns every configuration, default first.
func (r *EmailConfigRepository) List(ctx context.Context) ([]*model.EmailConfig, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+emailConfigColumns+` FROM email_configs ORDER BY is_default DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := []*model.EmailConfig{}
	for rows.Next() {
		c, err := scanEmailConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// Update rewrites connection settings and bumps updated_at. The default
// flag is only changed through SetDefault.
func (r *EmailConfigRepository) Update(ctx context.Context, cfg *model.EmailConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	query := `
        UPDATE email_configs
        SET name = $1, smtp_host = $2, smtp_port = $3, smtp_user = $4, smtp_password = $5,
            from_email = $6, from_name = $7, daily_limit = $8, updated_at = $9
        WHERE id = $10
    `
	res, err := r.DB.ExecContext(ctx, query,
		cfg.Name, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
		cfg.FromEmail, cfg.FromName, cfg.DailyLimit, cfg.UpdatedAt, cfg.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewConfigNotFound(cfg.ID)
	}
	return nil
}

// SetDefault makes id the only default. If id does not exist the
// transaction rolls back and the previous default stays.
func (r *EmailConfigRepository) SetDefault(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := lockDefault(ctx, tx); err != nil {
			return err
		}
		if err := clearDefault(ctx, tx); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE email_configs SET is_default = TRUE WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return appErrors.NewConfigNotFound(id)
		}
		return nil
	})
}

var _ EmailConfigRepositoryInterface = (*EmailConfigRepository)(nil)
