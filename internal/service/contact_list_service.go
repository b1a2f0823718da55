package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// ContactListService manages owner-scoped contact lists. Users see and
// change their own lists; owners and admins see all of them.
type ContactListService struct {
	ListRepo    repository.ContactListRepositoryInterface
	ContactRepo repository.ContactRepositoryInterface
}

type AddMembersResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func (s *ContactListService) Create(ctx context.Context, actor model.Identity, in model.ContactListInput) (*model.ContactList, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, appErrors.Validation("name is required")
	}
	l := &model.ContactList{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedBy:   actor.UserID,
	}
	if err := s.ListRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ContactListService) List(ctx context.Context, actor model.Identity) ([]*model.ContactList, error) {
	if actor.CanManage() {
		return s.ListRepo.List(ctx, "")
	}
	return s.ListRepo.List(ctx, actor.UserID)
}

func (s *ContactListService) Get(ctx context.Context, actor model.Identity, id string) (*model.ContactList, error) {
	l, err := s.ListRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage() && l.CreatedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return l, nil
}

func (s *ContactListService) Delete(ctx context.Context, actor model.Identity, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.ListRepo.Delete(ctx, id)
}

// AddContacts puts stored contacts on the list. Unknown ids and contacts
// already on the list are counted as skipped.
func (s *ContactListService) AddContacts(ctx context.Context, actor model.Identity, listID string, contactIDs []string) (*AddMembersResult, error) {
	if _, err := s.Get(ctx, actor, listID); err != nil {
		return nil, err
	}
	ids := dedupe(contactIDs)
	if len(ids) == 0 {
		return nil, appErrors.Validation("contact_ids is required")
	}
	known, err := s.ContactRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	knownIDs := make([]string, len(known))
	for i, c := range known {
		knownIDs[i] = c.ID
	}

	added, err := s.ListRepo.AddMembers(ctx, listID, knownIDs)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("contacts added to list",
		logger.String("list_id", listID),
		logger.Int("added", added),
		logger.Count(len(ids)),
	)
	return &AddMembersResult{Added: added, Skipped: len(ids) - added}, nil
}

func (s *ContactListService) Members(ctx context.Context, actor model.Identity, listID string) ([]*model.Contact, error) {
	if _, err := s.Get(ctx, actor, listID); err != nil {
		return nil, err
	}
	return s.ListRepo.Members(ctx, listID)
}
