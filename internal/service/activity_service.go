package service

import (
	"context"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

const (
	dashboardActivityLimit = 100
	userActivityLimit      = 500
)

// ActivityService reads the audit trail the worker writes.
type ActivityService struct {
	AuditRepo     repository.AuditRepositoryInterface
	DashboardRepo repository.DashboardRepositoryInterface
	UserRepo      repository.UserRepositoryInterface
}

// Dashboard is the owner's overview: per-user totals, the latest activity
// and installation-wide counts.
func (s *ActivityService) Dashboard(ctx context.Context, actor model.Identity) (*model.OwnerDashboard, error) {
	if actor.Role != model.RoleOwner {
		return nil, appErrors.ErrForbidden
	}
	users, err := s.DashboardRepo.UserSummaries(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.AuditRepo.ListRecent(ctx, dashboardActivityLimit)
	if err != nil {
		return nil, err
	}
	stats, err := s.DashboardRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &model.OwnerDashboard{Users: users, RecentActivity: recent, Stats: *stats}, nil
}

// UserActivity returns one user's latest actions. Users may read their
// own; owners and admins may read anyone's.
func (s *ActivityService) UserActivity(ctx context.Context, actor model.Identity, userID string) (*model.UserActivity, error) {
	if userID != actor.UserID && !actor.CanManage() {
		return nil, appErrors.ErrForbidden
	}
	u, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.AuditRepo.ListByUser(ctx, userID, userActivityLimit)
	if err != nil {
		return nil, err
	}
	return &model.UserActivity{User: u, Activity: entries}, nil
}

// CampaignHistory lists the audit entries of one campaign, oldest first.
func (s *ActivityService) CampaignHistory(ctx context.Context, campaignID string) ([]*model.AuditLog, error) {
	return s.AuditRepo.ListByEntity(ctx, "campaign", campaignID)
}
