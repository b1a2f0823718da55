package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-mailer/internal/lock"
	"github.com/unclebandit/campaign-mailer/internal/metrics"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

var (
	owner = model.Identity{UserID: "u-owner", Role: model.RoleOwner}
	admin = model.Identity{UserID: "u-admin", Role: model.RoleAdmin}
	user  = model.Identity{UserID: "u-user", Role: model.RoleUser}
)

type harness struct {
	st        *store
	transport *fakeTransport
	factory   *fakeFactory
	queue     *recordingQueue
	metrics   *metrics.Metrics
	locker    *lock.MemoryLocker

	resolver   *service.ConfigResolver
	dispatcher *service.Dispatcher
	campaigns  *service.CampaignService
	contacts   *service.ContactService
	responses  *service.ResponseService
	lists      *service.ContactListService
	templates  *service.TemplateLibrary
	activity   *service.ActivityService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := newStore()
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	h := &harness{
		st:        st,
		transport: &fakeTransport{reject: map[string]bool{}},
		queue:     &recordingQueue{},
		metrics:   m,
		locker:    lock.NewMemoryLocker(),
	}
	h.factory = &fakeFactory{transport: h.transport}
	h.resolver = &service.ConfigResolver{ConfigRepo: configRepo{st}}
	h.dispatcher = &service.Dispatcher{
		CampaignRepo: campaignRepo{st},
		ContactRepo:  contactRepo{st},
		DeliveryRepo: deliveryRepo{st},
		ListRepo:     listRepo{st},
		Resolver:     h.resolver,
		Transports:   h.factory,
		Locker:       h.locker,
		Queue:        h.queue,
		Metrics:      m,
		FormBaseURL:  "https://localhost:3000",
	}
	h.campaigns = &service.CampaignService{
		CampaignRepo:   campaignRepo{st},
		ContactRepo:    contactRepo{st},
		DeliveryRepo:   deliveryRepo{st},
		ResponseRepo:   responseRepo{st},
		PermissionRepo: permRepo{st},
		Queue:          h.queue,
		FormBaseURL:    "https://localhost:3000",
	}
	h.contacts = &service.ContactService{ContactRepo: contactRepo{st}}
	h.responses = &service.ResponseService{
		CampaignRepo: campaignRepo{st},
		ContactRepo:  contactRepo{st},
		ResponseRepo: responseRepo{st},
	}
	h.lists = &service.ContactListService{ListRepo: listRepo{st}, ContactRepo: contactRepo{st}}
	h.templates = &service.TemplateLibrary{EmailTemplates: emailTplRepo{st}, CampaignTemplates: campTplRepo{st}}
	h.activity = &service.ActivityService{AuditRepo: auditRepo{st}, DashboardRepo: dashboardRepo{st}, UserRepo: userRepo{st}}
	return h
}

// addUser stores a user under the id of one of the test identities.
func (h *harness) addUser(id model.Identity, email string) *model.User {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	u := &model.User{ID: id.UserID, Email: email, Name: email, Role: id.Role}
	h.st.users[u.ID] = u
	return u
}

func (h *harness) addContact(t *testing.T, email, firstName string) *model.Contact {
	t.Helper()
	c := &model.Contact{Email: email, FirstName: firstName, Subscribed: true}
	require.NoError(t, contactRepo{h.st}.Create(context.Background(), c))
	return c
}

func (h *harness) addConfig(t *testing.T, name string, isDefault bool) *model.EmailConfig {
	t.Helper()
	cfg := &model.EmailConfig{
		Name:      name,
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: name + "@example.com",
		FromName:  "Team " + name,
		IsDefault: isDefault,
	}
	require.NoError(t, configRepo{h.st}.Create(context.Background(), cfg))
	return cfg
}

func (h *harness) addCampaign(t *testing.T, name string) *model.Campaign {
	t.Helper()
	c, err := h.campaigns.CreateCampaign(context.Background(), owner, service.CampaignInput{
		Name:     name,
		FormHTML: "<form>{{first_name}}</form>",
	})
	require.NoError(t, err)
	return c
}

func (h *harness) campaign(t *testing.T, id string) *model.Campaign {
	t.Helper()
	c, err := campaignRepo{h.st}.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (h *harness) rowsFor(campaignID string) []*model.DeliveryRecord {
	rows, _ := deliveryRepo{h.st}.ListByCampaign(context.Background(), campaignID)
	return rows
}
