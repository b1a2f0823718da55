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

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, email, name, password_hash, role, twofa_enabled, twofa_secret, last_login, created_at`

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.TwoFAEnabled, &u.TwoFASecret, &u.LastLogin, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO users (id, email, name, password_hash, role, twofa_enabled, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.TwoFAEnabled, u.CreatedAt)
	if err != nil {
		return translate(err, "user "+u.Email)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewUserNotFound(id)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewUserNotFound(email)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes the user along with their lists and templates. Campaigns
// they created block the delete with ErrConflict.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translate(err, "user "+id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewUserNotFound(id)
	}
	return nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
