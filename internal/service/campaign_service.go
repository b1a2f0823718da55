// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/queue"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	ResponseRepo repository.FormResponseRepositoryInterface
	// PermissionRepo backs campaign sharing. When nil, only the creator
	// and managers can change a campaign.
	PermissionRepo repository.CampaignPermissionRepositoryInterface
	Queue        queue.Queue
	FormBaseURL  string
}

// CampaignInput carries the editable fields of a campaign.
type CampaignInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	FormHTML    string  `json:"form_html"`
	SubjectLine *string `json:"subject_line"`
}

func (in CampaignInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return appErrors.Validation("name is required")
	}
	return nil
}

func (s *CampaignService) CreateCampaign(ctx context.Context, actor model.Identity, in CampaignInput) (*model.Campaign, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &model.Campaign{
		Name:        in.Name,
		Description: in.Description,
		FormHTML:    in.FormHTML,
		SubjectLine: in.SubjectLine,
		Status:      model.StatusDraft,
		CreatedBy:   actor.UserID,
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, queue.CampaignEvent{Type: queue.EventCampaignCreated, CampaignID: c.ID, ActorID: actor.UserID, At: c.CreatedAt})
	return c, nil
}

// ListCampaigns returns one page of campaigns. Owners and admins see every
// campaign, other users their own and those shared with them.
func (s *CampaignService) ListCampaigns(ctx context.Context, actor model.Identity, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	filter := repository.CampaignFilter{Status: status, Offset: offset, Limit: pageSize}
	if !actor.CanManage() {
		filter.VisibleTo = actor.UserID
	}

	ptrs, total, err := s.CampaignRepo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

// UpdateCampaign edits content fields. Status is never changed here.
func (s *CampaignService) UpdateCampaign(ctx context.Context, actor model.Identity, id string, in CampaignInput) (*model.Campaign, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, c, true); err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Description = in.Description
	c.FormHTML = in.FormHTML
	c.SubjectLine = in.SubjectLine
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCampaign is limited to the creator and managers; sharing never
// grants it.
func (s *CampaignService) DeleteCampaign(ctx context.Context, actor model.Identity, id string) error {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ownsOrManages(actor, c) {
		return appErrors.ErrForbidden
	}
	if err := s.CampaignRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, queue.CampaignEvent{Type: queue.EventCampaignDeleted, CampaignID: id, ActorID: actor.UserID, At: time.Now().UTC()})
	return nil
}

// Schedule records when a campaign should go out. DRAFT and SCHEDULED
// campaigns may be (re)scheduled; a SENT campaign may not.
func (s *CampaignService) Schedule(ctx context.Context, actor model.Identity, campaignID string, when time.Time) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, c, true); err != nil {
		return nil, err
	}
	if !model.CanTransition(c.Status, model.StatusScheduled) {
		return nil, appErrors.NewInvalidState(c.ID, string(c.Status), "schedule")
	}
	if err := s.CampaignRepo.Schedule(ctx, campaignID, when); err != nil {
		return nil, err
	}

	when = when.UTC()
	c.Status = model.StatusScheduled
	c.ScheduledFor = &when
	s.publish(ctx, queue.CampaignEvent{
		Type:       queue.EventCampaignScheduled,
		CampaignID: c.ID,
		ActorID:    actor.UserID,
		When:       &when,
		At:         time.Now().UTC(),
	})
	return c, nil
}

// RenderPreview renders the email one contact would receive, without sending it.
func (s *CampaignService) RenderPreview(ctx context.Context, campaignID, contactID string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return "", err
	}
	contact, err := s.ContactRepo.GetByID(ctx, contactID)
	if err != nil {
		return "", err
	}
	return RenderEmail(campaign.FormHTML, contact, FormURL(s.FormBaseURL, campaign.ID, contact.ID)), nil
}

// Analytics summarizes deliveries and responses. Rates are percentages
// rounded to two decimals, and zero when nothing was sent.
func (s *CampaignService) Analytics(ctx context.Context, campaignID string) (*model.CampaignAnalytics, error) {
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	stats, err := s.DeliveryRepo.Stats(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	responses, err := s.ResponseRepo.CountByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return &model.CampaignAnalytics{
		CampaignID:     campaignID,
		TotalSent:      stats.Total,
		TotalOpened:    stats.Opened,
		TotalClicked:   stats.Clicked,
		TotalResponses: responses,
		OpenRate:       rate(stats.Opened, stats.Total),
		ClickRate:      rate(stats.Clicked, stats.Total),
		ResponseRate:   rate(responses, stats.Total),
	}, nil
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*10000/float64(total)) / 100
}

func (s *CampaignService) publish(ctx context.Context, evt queue.CampaignEvent) {
	if s.Queue == nil {
		return
	}
	if err := s.Queue.Publish(queue.TopicCampaignEvents, evt); err != nil {
		logger.From(ctx).Warn("failed to publish campaign event",
			logger.CampaignID(evt.CampaignID),
			zap.String("event", evt.Type),
			logger.Err(err),
		)
	}
}

// Deliveries lists the delivery records of a campaign, oldest first.
func (s *CampaignService) Deliveries(ctx context.Context, campaignID string) ([]*model.DeliveryRecord, error) {
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.DeliveryRepo.ListByCampaign(ctx, campaignID)
}

// ====================== Sharing ======================

func ownsOrManages(actor model.Identity, c *model.Campaign) bool {
	return actor.CanManage() || c.CreatedBy == actor.UserID
}

// authorize lets the creator and managers through, then falls back to the
// permission granted to the actor. edit asks for can_edit instead of can_view.
func (s *CampaignService) authorize(ctx context.Context, actor model.Identity, c *model.Campaign, edit bool) error {
	if ownsOrManages(actor, c) {
		return nil
	}
	if s.PermissionRepo == nil {
		return appErrors.ErrForbidden
	}
	p, err := s.PermissionRepo.Get(ctx, c.ID, actor.UserID)
	if errors.Is(err, appErrors.ErrNotFound) {
		return appErrors.ErrForbidden
	}
	if err != nil {
		return err
	}
	if (edit && !p.CanEdit) || (!edit && !p.CanView) {
		return appErrors.ErrForbidden
	}
	return nil
}

// ShareInput grants a user access to a campaign. Edit access implies view.
type ShareInput struct {
	UserID  string `json:"user_id"`
	CanView bool   `json:"can_view"`
	CanEdit bool   `json:"can_edit"`
}

// Share grants or updates another user's access. Only the creator and
// managers may share a campaign.
func (s *CampaignService) Share(ctx context.Context, actor model.Identity, campaignID string, in ShareInput) (*model.CampaignPermission, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, appErrors.Validation("user_id is required")
	}
	c, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !ownsOrManages(actor, c) || s.PermissionRepo == nil {
		return nil, appErrors.ErrForbidden
	}
	if in.UserID == c.CreatedBy {
		return nil, appErrors.Validation("campaign already belongs to user %s", in.UserID)
	}
	p := &model.CampaignPermission{
		CampaignID: campaignID,
		UserID:     in.UserID,
		CanView:    in.CanView || in.CanEdit,
		CanEdit:    in.CanEdit,
	}
	if err := s.PermissionRepo.Grant(ctx, p); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("campaign shared",
		logger.CampaignID(campaignID),
		logger.UserID(in.UserID),
		zap.Bool("can_edit", p.CanEdit),
	)
	return p, nil
}

func (s *CampaignService) Unshare(ctx context.Context, actor model.Identity, campaignID, userID string) error {
	c, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if !ownsOrManages(actor, c) || s.PermissionRepo == nil {
		return appErrors.ErrForbidden
	}
	return s.PermissionRepo.Revoke(ctx, campaignID, userID)
}

// Permissions lists who a campaign is shared with.
func (s *CampaignService) Permissions(ctx context.Context, actor model.Identity, campaignID string) ([]*model.CampaignPermission, error) {
	c, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !ownsOrManages(actor, c) || s.PermissionRepo == nil {
		return nil, appErrors.ErrForbidden
	}
	return s.PermissionRepo.ListByCampaign(ctx, campaignID)
}
