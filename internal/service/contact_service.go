package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

type ContactService struct {
	ContactRepo repository.ContactRepositoryInterface
}

func (s *ContactService) Create(ctx context.Context, c *model.Contact) error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return appErrors.Validation("email is required")
	}
	return s.ContactRepo.Create(ctx, c)
}

func (s *ContactService) List(ctx context.Context) ([]*model.Contact, error) {
	return s.ContactRepo.List(ctx)
}

func (s *ContactService) Update(ctx context.Context, c *model.Contact) error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return appErrors.Validation("email is required")
	}
	return s.ContactRepo.Update(ctx, c)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.ContactRepo.Delete(ctx, id)
}

// Import inserts each row whose email is not stored yet. Rows without an
// email, duplicates and rows the store rejects are counted as skipped.
func (s *ContactService) Import(ctx context.Context, rows []model.ContactImport) (*model.ImportResult, error) {
	log := logger.From(ctx).With(logger.Op("import_contacts"), logger.Count(len(rows)))
	result := &model.ImportResult{}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		email := strings.TrimSpace(row.Email)
		if email == "" {
			result.Skipped++
			continue
		}
		c := &model.Contact{
			Email:      email,
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			Company:    row.Company,
			Phone:      row.Phone,
			Subscribed: true,
		}
		inserted, err := s.ContactRepo.InsertIfAbsent(ctx, c)
		if err != nil {
			log.Warn("import row rejected", logger.Int("row", i), logger.Email(email), logger.Err(err))
			result.Skipped++
			continue
		}
		if inserted {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	log.Info("contacts imported", logger.Int("imported", result.Imported), logger.Int("skipped", result.Skipped))
	return result, nil
}
