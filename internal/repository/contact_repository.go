package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
)

// ContactRepositoryInterface defines methods used by services
type ContactRepositoryInterface interface {
	Create(ctx context.Context, c *model.Contact) error
	InsertIfAbsent(ctx context.Context, c *model.Contact) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Contact, error)
	List(ctx context.Context) ([]*model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id string) error
}

type ContactRepository struct {
	DB *sql.DB
}

const contactColumns = `id, email, first_name, last_name, company, phone, tags, subscribed, created_at, updated_at`

func scanContact(row scanner) (*model.Contact, error) {
	var c model.Contact
	if err := row.Scan(
		&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.Company, &c.Phone, &c.Tags, &c.Subscribed,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func prepareContact(c *model.Contact) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
}

const insertContact = `
        INSERT INTO contacts (id, email, first_name, last_name, company, phone, tags, subscribed, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

// Create inserts a contact. A duplicate email is a conflict.
func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) error {
	prepareContact(c)
	_, err := r.DB.ExecContext(ctx, insertContact,
		c.ID, c.Email, c.FirstName, c.LastName, c.Company, c.Phone, c.Tags, c.Subscribed, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return translate(err, "contact "+c.Email)
	}
	return nil
}

// InsertIfAbsent inserts the contact unless its email is already stored.
// It reports whether a row was written.
func (r *ContactRepository) InsertIfAbsent(ctx context.Context, c *model.Contact) (bool, error) {
	prepareContact(c)
	res, err := r.DB.ExecContext(ctx, insertContact+` ON CONFLICT (email) DO NOTHING`,
		c.ID, c.Email, c.FirstName, c.LastName, c.Company, c.Phone, c.Tags, c.Subscribed, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	c, err := scanContact(r.DB.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewContactNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

// ListByIDs returns the stored contacts among ids in store order.
// Unknown ids are simply absent from the result.
func (r *ContactRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Contact, error) {
	if len(ids) == 0 {
		return []*model.Contact{}, nil
	}
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ANY($1) ORDER BY created_at, id`
	return r.query(ctx, query, pq.Array(ids))
}

func (r *ContactRepository) List(ctx context.Context) ([]*model.Contact, error) {
	return r.query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC, id`)
}

func (r *ContactRepository) query(ctx context.Context, query string, args ...any) ([]*model.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) Update(ctx context.Context, c *model.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	query := `
        UPDATE contacts
        SET email = $1, first_name = $2, last_name = $3, company = $4, phone = $5, tags = $6,
            subscribed = $7, updated_at = $8
        WHERE id = $9
    `
	res, err := r.DB.ExecContext(ctx, query,
		c.Email, c.FirstName, c.LastName, c.Company, c.Phone, c.Tags, c.Subscribed, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return translate(err, "contact "+c.Email)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewContactNotFound(c.ID)
	}
	return nil
}

// Delete removes a contact. Contacts with delivery history cannot be deleted.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return translate(err, "contact "+id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewContactNotFound(id)
	}
	return nil
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
