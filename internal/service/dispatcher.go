package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/lock"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/mailer"
	"github.com/unclebandit/campaign-mailer/internal/metrics"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/queue"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// SendRequest names the recipients directly, through a contact list, or
// both. The two sets are merged before sending.
type SendRequest struct {
	CampaignID    string
	ContactIDs    []string
	ListID        string
	EmailConfigID string
}

type SendResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Dispatcher sends a campaign to a set of contacts.
type Dispatcher struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	DeliveryRepo repository.DeliveryRepositoryInterface
	ListRepo     repository.ContactListRepositoryInterface
	Resolver     *ConfigResolver
	Transports   mailer.Factory
	Locker       lock.Locker
	Queue        queue.Queue
	Metrics      *metrics.Metrics
	FormBaseURL  string

	Now func() time.Time
}

// recipients merges the explicit contact ids with the list's members,
// dropping duplicates. Only the list's creator and managers may send to it.
func (d *Dispatcher) recipients(ctx context.Context, actor model.Identity, req SendRequest) ([]string, error) {
	if req.ListID == "" {
		return dedupe(req.ContactIDs), nil
	}
	if d.ListRepo == nil {
		return nil, appErrors.Validation("contact lists are not available")
	}
	list, err := d.ListRepo.GetByID(ctx, req.ListID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage() && list.CreatedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	members, err := d.ListRepo.MemberIDs(ctx, req.ListID)
	if err != nil {
		return nil, fmt.Errorf("load list members: %w", err)
	}
	return dedupe(append(append([]string(nil), req.ContactIDs...), members...)), nil
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

// Send delivers the campaign to every stored contact among req.ContactIDs
// and the members of req.ListID, one at a time, and then marks the campaign SENT.
//
// A failure to resolve the configuration or open a transport aborts before
// any message goes out. After that, a failing recipient is counted and
// skipped. A delivery row is written only for messages the SMTP server
// accepted. The campaign becomes SENT even when every recipient failed.
func (d *Dispatcher) Send(ctx context.Context, actor model.Identity, req SendRequest) (*SendResult, error) {
	log := logger.From(ctx).With(logger.Op("send_campaign"), logger.CampaignID(req.CampaignID), logger.UserID(actor.UserID))
	start := time.Now()

	campaign, err := d.CampaignRepo.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == model.StatusSent {
		return nil, appErrors.NewInvalidState(campaign.ID, string(campaign.Status), "send")
	}
	recipients, err := d.recipients(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	release, err := d.Locker.Acquire(ctx, "campaign:"+campaign.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another send may have finished between the first read and the lock.
	campaign, err = d.CampaignRepo.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == model.StatusSent {
		return nil, appErrors.NewInvalidState(campaign.ID, string(campaign.Status), "send")
	}

	cfg, err := d.Resolver.Resolve(ctx, req.EmailConfigID)
	if err != nil {
		return nil, err
	}
	log = log.With(logger.ConfigID(cfg.ID))

	transport, err := d.Transports.Transport(cfg)
	if err != nil {
		return nil, fmt.Errorf("open transport: %w", err)
	}

	contacts, err := d.ContactRepo.ListByIDs(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	log.Info("campaign send started",
		logger.Int("requested", len(recipients)),
		logger.Int("recipients", len(contacts)),
	)

	result := &SendResult{}
	var interrupted error
	for _, contact := range contacts {
		if err := ctx.Err(); err != nil {
			interrupted = err
			log.Warn("campaign send interrupted", logger.Int("remaining", len(contacts)-result.Sent-result.Failed), logger.Err(err))
			break
		}
		if d.deliver(ctx, log, campaign, cfg, transport, contact) {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	// Status, metrics and events are recorded even if the caller went away.
	finishCtx := context.WithoutCancel(ctx)
	sentAt := d.now()
	changed, err := d.CampaignRepo.MarkSent(finishCtx, campaign.ID, sentAt)
	if err != nil {
		return result, fmt.Errorf("mark campaign sent: %w", err)
	}
	if !changed {
		log.Warn("campaign was already marked sent")
	}

	d.Metrics.ObserveSend(result.Sent, result.Failed, time.Since(start))
	d.publish(log, queue.CampaignEvent{
		Type:       queue.EventCampaignSent,
		CampaignID: campaign.ID,
		ActorID:    actor.UserID,
		Sent:       result.Sent,
		Failed:     result.Failed,
		At:         sentAt,
	})

	log.Info("campaign send finished",
		logger.Int("sent", result.Sent),
		logger.Int("failed", result.Failed),
		logger.Duration(time.Since(start)),
	)
	if interrupted != nil {
		return result, interrupted
	}
	return result, nil
}

// deliver renders and transmits one message and records the delivery row.
// It reports whether both steps succeeded.
func (d *Dispatcher) deliver(
	ctx context.Context,
	log *zap.Logger,
	campaign *model.Campaign,
	cfg *model.EmailConfig,
	transport mailer.Transport,
	contact *model.Contact,
) bool {
	formURL := FormURL(d.FormBaseURL, campaign.ID, contact.ID)
	msg := mailer.Message{
		FromName:  cfg.FromName,
		FromEmail: cfg.FromEmail,
		To:        contact.Email,
		Subject:   campaign.Subject(),
		HTML:      RenderEmail(campaign.FormHTML, contact, formURL),
	}

	if err := transport.Send(ctx, msg); err != nil {
		log.Warn("failed to send email", logger.Email(contact.Email), logger.ContactID(contact.ID), logger.Err(err))
		return false
	}

	rec := &model.DeliveryRecord{CampaignID: campaign.ID, ContactID: contact.ID, SentAt: d.now()}
	if err := d.DeliveryRepo.Insert(context.WithoutCancel(ctx), rec); err != nil {
		// Counted as failed so sent always equals the number of delivery rows.
		log.Error("email sent but delivery not recorded",
			logger.Email(contact.Email), logger.ContactID(contact.ID), logger.Err(err))
		return false
	}
	return true
}

func (d *Dispatcher) publish(log *zap.Logger, evt queue.CampaignEvent) {
	if d.Queue == nil {
		return
	}
	if err := d.Queue.Publish(queue.TopicCampaignEvents, evt); err != nil {
		log.Warn("failed to publish campaign event", logger.String("event", evt.Type), logger.Err(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

