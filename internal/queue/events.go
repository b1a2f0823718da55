package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// TopicCampaignEvents carries campaign lifecycle events.
const TopicCampaignEvents = "campaign_events"

const (
	EventCampaignCreated   = "campaign.created"
	EventCampaignScheduled = "campaign.scheduled"
	EventCampaignSent      = "campaign.sent"
	EventCampaignDeleted   = "campaign.deleted"
)

type CampaignEvent struct {
	Type       string     `json:"type"`
	CampaignID string     `json:"campaign_id"`
	ActorID    string     `json:"actor_id,omitempty"`
	Sent       int        `json:"sent,omitempty"`
	Failed     int        `json:"failed,omitempty"`
	When       *time.Time `json:"when,omitempty"`
	At         time.Time  `json:"at"`
}

func decodeEvent(body []byte) (CampaignEvent, error) {
	var evt CampaignEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, fmt.Errorf("decode campaign event: %w", err)
	}
	if evt.Type == "" || evt.CampaignID == "" {
		return evt, fmt.Errorf("decode campaign event: missing type or campaign id")
	}
	return evt, nil
}

// AuditEntry converts an event into the audit_logs row that records it.
func AuditEntry(evt CampaignEvent) *model.AuditLog {
	entry := &model.AuditLog{
		Action:     evt.Type,
		EntityType: "campaign",
		EntityID:   evt.CampaignID,
		CreatedAt:  evt.At,
	}
	if evt.ActorID != "" {
		actor := evt.ActorID
		entry.UserID = &actor
	}
	switch evt.Type {
	case EventCampaignSent:
		entry.Details = fmt.Sprintf("sent=%d failed=%d", evt.Sent, evt.Failed)
	case EventCampaignScheduled:
		if evt.When != nil {
			entry.Details = "scheduled_for=" + evt.When.UTC().Format(time.RFC3339)
		}
	}
	return entry
}

// AuditHandler persists each campaign event as an audit log row.
func AuditHandler(auditRepo repository.AuditRepositoryInterface) func(payload any) error {
	return func(payload any) error {
		var evt CampaignEvent
		switch p := payload.(type) {
		case CampaignEvent:
			evt = p
		case *CampaignEvent:
			evt = *p
		default:
			logger.Named("audit").Warn("unexpected payload type", logger.String("type", fmt.Sprintf("%T", payload)))
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := auditRepo.Create(ctx, AuditEntry(evt)); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
		return nil
	}
}

// StartAuditSubscriber records campaign events from q in the audit log.
func StartAuditSubscriber(q Queue, auditRepo repository.AuditRepositoryInterface) error {
	if err := q.Subscribe(TopicCampaignEvents, AuditHandler(auditRepo)); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicCampaignEvents, err)
	}
	return nil
}
