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

type ContactListRepositoryInterface interface {
	Create(ctx context.Context, l *model.ContactList) error
	GetByID(ctx context.Context, id string) (*model.ContactList, error)
	List(ctx context.Context, createdBy string) ([]*model.ContactList, error)
	Delete(ctx context.Context, id string) error

	// Membership
	AddMembers(ctx context.Context, listID string, contactIDs []string) (int, error)
	MemberIDs(ctx context.Context, listID string) ([]string, error)
	Members(ctx context.Context, listID string) ([]*model.Contact, error)
}

type ContactListRepository struct {
	DB *sql.DB
}

const contactListSelect = `
        SELECT l.id, l.name, l.description, l.created_by, l.created_at,
               (SELECT COUNT(*) FROM contact_list_members m WHERE m.list_id = l.id)
        FROM contact_lists l`

func scanContactList(row scanner) (*model.ContactList, error) {
	var l model.ContactList
	if err := row.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedBy, &l.CreatedAt, &l.ContactCount); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ContactListRepository) Create(ctx context.Context, l *model.ContactList) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	query := `
        INSERT INTO contact_lists (id, name, description, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	if _, err := r.DB.ExecContext(ctx, query, l.ID, l.Name, l.Description, l.CreatedBy, l.CreatedAt); err != nil {
		return translate(err, "contact list "+l.Name)
	}
	return nil
}

func (r *ContactListRepository) GetByID(ctx context.Context, id string) (*model.ContactList, error) {
	l, err := scanContactList(r.DB.QueryRowContext(ctx, contactListSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewRecordNotFound("contact list", id)
		}
		return nil, err
	}
	return l, nil
}

// List returns every list, or only those created by createdBy when it is set.
func (r *ContactListRepository) List(ctx context.Context, createdBy string) ([]*model.ContactList, error) {
	query := contactListSelect
	args := []any{}
	if createdBy != "" {
		query += ` WHERE l.created_by = $1`
		args = append(args, createdBy)
	}
	query += ` ORDER BY l.created_at DESC, l.id`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []*model.ContactList{}
	for rows.Next() {
		l, err := scanContactList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *ContactListRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM contact_lists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewRecordNotFound("contact list", id)
	}
	return nil
}

// AddMembers inserts the contacts that are not yet on the list and
// returns how many were added.
func (r *ContactListRepository) AddMembers(ctx context.Context, listID string, contactIDs []string) (int, error) {
	if len(contactIDs) == 0 {
		return 0, nil
	}
	query := `
        INSERT INTO contact_list_members (list_id, contact_id)
        SELECT $1, unnest($2::text[])
        ON CONFLICT (list_id, contact_id) DO NOTHING
    `
	res, err := r.DB.ExecContext(ctx, query, listID, pq.Array(contactIDs))
	if err != nil {
		return 0, translate(err, "contact list member")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *ContactListRepository) MemberIDs(ctx context.Context, listID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT contact_id FROM contact_list_members WHERE list_id = $1 ORDER BY added_at, contact_id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ContactListRepository) Members(ctx context.Context, listID string) ([]*model.Contact, error) {
	query := `
        SELECT c.id, c.email, c.first_name, c.last_name, c.company, c.phone, c.tags, c.subscribed,
               c.created_at, c.updated_at
        FROM contacts c
        JOIN contact_list_members m ON m.contact_id = c.id
        WHERE m.list_id = $1
        ORDER BY m.added_at, c.id
    `
	rows, err := r.DB.QueryContext(ctx, query, listID)
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

var _ ContactListRepositoryInterface = (*ContactListRepository)(nil)
