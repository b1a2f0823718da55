package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/mailer"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// store is an in-memory stand-in for every repository the services use.
type store struct {
	mu        sync.Mutex
	seq       int
	campaigns map[string]*model.Campaign
	contacts  []*model.Contact
	configs   map[string]*model.EmailConfig
	rows      []*model.DeliveryRecord
	responses []*model.FormResponse
	users     map[string]*model.User
	lists     map[string]*model.ContactList
	members   map[string][]string
	perms     map[string]*model.CampaignPermission
	emailTpls map[string]*model.EmailTemplate
	campTpls  map[string]*model.CampaignTemplate
	audit     []*model.AuditLog

	failDeliveryInsert bool
}

func newStore() *store {
	return &store{
		campaigns: map[string]*model.Campaign{},
		configs:   map[string]*model.EmailConfig{},
		users:     map[string]*model.User{},
		lists:     map[string]*model.ContactList{},
		members:   map[string][]string{},
		perms:     map[string]*model.CampaignPermission{},
		emailTpls: map[string]*model.EmailTemplate{},
		campTpls:  map[string]*model.CampaignTemplate{},
	}
}

func (s *store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

type campaignRepo struct{ *store }
type contactRepo struct{ *store }
type deliveryRepo struct{ *store }
type configRepo struct{ *store }
type responseRepo struct{ *store }
type userRepo struct{ *store }
type listRepo struct{ *store }
type permRepo struct{ *store }
type emailTplRepo struct{ *store }
type campTplRepo struct{ *store }
type auditRepo struct{ *store }
type dashboardRepo struct{ *store }

var (
	_ repository.CampaignRepositoryInterface     = campaignRepo{}
	_ repository.ContactRepositoryInterface      = contactRepo{}
	_ repository.DeliveryRepositoryInterface     = deliveryRepo{}
	_ repository.EmailConfigRepositoryInterface  = configRepo{}
	_ repository.FormResponseRepositoryInterface = responseRepo{}
	_ repository.UserRepositoryInterface         = userRepo{}

	_ repository.ContactListRepositoryInterface        = listRepo{}
	_ repository.CampaignPermissionRepositoryInterface = permRepo{}
	_ repository.EmailTemplateRepositoryInterface      = emailTplRepo{}
	_ repository.CampaignTemplateRepositoryInterface   = campTplRepo{}
	_ repository.AuditRepositoryInterface              = auditRepo{}
	_ repository.DashboardRepositoryInterface          = dashboardRepo{}
)

// --- campaigns ---

func (r campaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = r.nextID("c")
	}
	c.CreatedAt = time.Now().UTC()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r campaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r campaignRepo) List(ctx context.Context, f repository.CampaignFilter) ([]*model.Campaign, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Campaign
	for _, c := range r.campaigns {
		if f.CreatedBy != "" && c.CreatedBy != f.CreatedBy {
			continue
		}
		if f.VisibleTo != "" && c.CreatedBy != f.VisibleTo {
			p, ok := r.perms[c.ID+"|"+f.VisibleTo]
			if !ok || !p.CanView {
				continue
			}
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start, end := f.Offset, f.Offset+f.Limit
	if start > len(all) {
		start = len(all)
	}
	if f.Limit == 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r campaignRepo) Update(ctx context.Context, c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.campaigns[c.ID]
	if !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	stored.Name, stored.Description, stored.FormHTML, stored.SubjectLine = c.Name, c.Description, c.FormHTML, c.SubjectLine
	return nil
}

func (r campaignRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	delete(r.campaigns, id)
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.CampaignID != id {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r campaignRepo) Schedule(ctx context.Context, id string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	if c.Status == model.StatusSent {
		return appErrors.NewInvalidState(id, string(c.Status), "schedule")
	}
	c.Status = model.StatusScheduled
	c.ScheduledFor = &when
	return nil
}

func (r campaignRepo) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Status == model.StatusSent {
		return false, nil
	}
	c.Status = model.StatusSent
	c.SentAt = &at
	c.ScheduledFor = nil
	return true, nil
}

// --- contacts ---

func (r contactRepo) insert(c *model.Contact) {
	if c.ID == "" {
		c.ID = r.nextID("k")
	}
	cp := *c
	r.contacts = append(r.contacts, &cp)
}

func (r contactRepo) byEmail(email string) bool {
	for _, c := range r.contacts {
		if c.Email == email {
			return true
		}
	}
	return false
}

func (r contactRepo) Create(ctx context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byEmail(c.Email) {
		return fmt.Errorf("%w: contact %s already exists", appErrors.ErrConflict, c.Email)
	}
	r.insert(c)
	return nil
}

func (r contactRepo) InsertIfAbsent(ctx context.Context, c *model.Contact) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byEmail(c.Email) {
		return false, nil
	}
	r.insert(c)
	return true, nil
}

func (r contactRepo) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, appErrors.NewContactNotFound(id)
}

func (r contactRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []*model.Contact{}
	for _, c := range r.contacts {
		if want[c.ID] {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r contactRepo) List(ctx context.Context) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Contact(nil), r.contacts...), nil
}

func (r contactRepo) Update(ctx context.Context, c *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.contacts {
		if existing.ID == c.ID {
			cp := *c
			r.contacts[i] = &cp
			return nil
		}
	}
	return appErrors.NewContactNotFound(c.ID)
}

func (r contactRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ContactID == id {
			return fmt.Errorf("%w: contact %s is still referenced", appErrors.ErrConflict, id)
		}
	}
	for i, c := range r.contacts {
		if c.ID == id {
			r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)
			return nil
		}
	}
	return appErrors.NewContactNotFound(id)
}

// --- delivery rows ---

func (r deliveryRepo) Insert(ctx context.Context, rec *model.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDeliveryInsert {
		return errors.New("disk full")
	}
	rec.ID = r.nextID("d")
	cp := *rec
	r.rows = append(r.rows, &cp)
	return nil
}

func (r deliveryRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*model.DeliveryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.DeliveryRecord{}
	for _, row := range r.rows {
		if row.CampaignID == campaignID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r deliveryRepo) Stats(ctx context.Context, campaignID string) (*model.DeliveryStats, error) {
	rows, _ := r.ListByCampaign(ctx, campaignID)
	s := &model.DeliveryStats{Total: len(rows)}
	for _, row := range rows {
		if row.Opened {
			s.Opened++
		}
		if row.Clicked {
			s.Clicked++
		}
	}
	return s, nil
}

// --- email configs ---

func (r configRepo) Create(ctx context.Context, cfg *model.EmailConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.ID == "" {
		cfg.ID = r.nextID("e")
	}
	if cfg.IsDefault {
		for _, c := range r.configs {
			c.IsDefault = false
		}
	}
	cfg.UpdatedAt = time.Now().UTC()
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r configRepo) GetByID(ctx context.Context, id string) (*model.EmailConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return nil, appErrors.NewConfigNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r configRepo) GetDefault(ctx context.Context) (*model.EmailConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.configs {
		if c.IsDefault {
			cp := *c
			return &cp, nil
		}
	}
	return nil, appErrors.ErrNoDefaultConfig
}

func (r configRepo) List(ctx context.Context) ([]*model.EmailConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.EmailConfig{}
	for _, c := range r.configs {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r configRepo) Update(ctx context.Context, cfg *model.EmailConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.ID]; !ok {
		return appErrors.NewConfigNotFound(cfg.ID)
	}
	cfg.UpdatedAt = time.Now().UTC()
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r configRepo) SetDefault(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.configs[id]
	if !ok {
		return appErrors.NewConfigNotFound(id)
	}
	for _, c := range r.configs {
		c.IsDefault = false
	}
	target.IsDefault = true
	return nil
}

func (s *store) defaults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.configs {
		if c.IsDefault {
			n++
		}
	}
	return n
}

// --- responses ---

func (r responseRepo) Create(ctx context.Context, resp *model.FormResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = r.nextID("r")
	resp.SubmittedAt = time.Now().UTC()
	cp := *resp
	r.responses = append(r.responses, &cp)
	return nil
}

func (r responseRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*model.FormResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.FormResponse{}
	for _, resp := range r.responses {
		if resp.CampaignID == campaignID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r responseRepo) CountByCampaign(ctx context.Context, campaignID string) (int, error) {
	list, _ := r.ListByCampaign(ctx, campaignID)
	return len(list), nil
}

// --- users ---

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: user %s already exists", appErrors.ErrConflict, u.Email)
		}
	}
	u.ID = r.nextID("u")
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, appErrors.NewUserNotFound(id)
	}
	return u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, appErrors.NewUserNotFound(email)
}

func (r userRepo) List(ctx context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return appErrors.NewUserNotFound(id)
	}
	for _, c := range r.campaigns {
		if c.CreatedBy == id {
			return fmt.Errorf("%w: user %s is still referenced", appErrors.ErrConflict, id)
		}
	}
	delete(r.users, id)
	return nil
}

// --- contact lists ---

func (r listRepo) Create(ctx context.Context, l *model.ContactList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextID("l")
	l.CreatedAt = time.Now().UTC()
	cp := *l
	r.lists[l.ID] = &cp
	return nil
}

func (r listRepo) GetByID(ctx context.Context, id string) (*model.ContactList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[id]
	if !ok {
		return nil, appErrors.NewRecordNotFound("contact list", id)
	}
	cp := *l
	cp.ContactCount = len(r.members[id])
	return &cp, nil
}

func (r listRepo) List(ctx context.Context, createdBy string) ([]*model.ContactList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.ContactList{}
	for _, l := range r.lists {
		if createdBy != "" && l.CreatedBy != createdBy {
			continue
		}
		cp := *l
		cp.ContactCount = len(r.members[l.ID])
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r listRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lists[id]; !ok {
		return appErrors.NewRecordNotFound("contact list", id)
	}
	delete(r.lists, id)
	delete(r.members, id)
	return nil
}

func (r listRepo) AddMembers(ctx context.Context, listID string, contactIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := 0
	for _, id := range contactIDs {
		present := false
		for _, m := range r.members[listID] {
			if m == id {
				present = true
				break
			}
		}
		if !present {
			r.members[listID] = append(r.members[listID], id)
			added++
		}
	}
	return added, nil
}

func (r listRepo) MemberIDs(ctx context.Context, listID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.members[listID]...), nil
}

func (r listRepo) Members(ctx context.Context, listID string) ([]*model.Contact, error) {
	ids, _ := r.MemberIDs(ctx, listID)
	return contactRepo{r.store}.ListByIDs(ctx, ids)
}

// --- campaign permissions ---

func (r permRepo) Grant(ctx context.Context, p *model.CampaignPermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[p.UserID]; !ok {
		return appErrors.NewUserNotFound(p.UserID)
	}
	p.CreatedAt = time.Now().UTC()
	cp := *p
	r.perms[p.CampaignID+"|"+p.UserID] = &cp
	return nil
}

func (r permRepo) Get(ctx context.Context, campaignID, userID string) (*model.CampaignPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.perms[campaignID+"|"+userID]
	if !ok {
		return nil, appErrors.NewRecordNotFound("campaign permission", campaignID+"/"+userID)
	}
	cp := *p
	return &cp, nil
}

func (r permRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*model.CampaignPermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.CampaignPermission{}
	for _, p := range r.perms {
		if p.CampaignID == campaignID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r permRepo) Revoke(ctx context.Context, campaignID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := campaignID + "|" + userID
	if _, ok := r.perms[key]; !ok {
		return appErrors.NewRecordNotFound("campaign permission", campaignID+"/"+userID)
	}
	delete(r.perms, key)
	return nil
}

// --- templates ---

func (r emailTplRepo) Create(ctx context.Context, t *model.EmailTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID("et")
	cp := *t
	r.emailTpls[t.ID] = &cp
	return nil
}

func (r emailTplRepo) GetByID(ctx context.Context, id string) (*model.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.emailTpls[id]
	if !ok {
		return nil, appErrors.NewRecordNotFound("email template", id)
	}
	cp := *t
	return &cp, nil
}

func (r emailTplRepo) ListVisible(ctx context.Context, userID string) ([]*model.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.EmailTemplate{}
	for _, t := range r.emailTpls {
		if t.CreatedBy == userID || t.IsPublic {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r emailTplRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.emailTpls[id]; !ok {
		return appErrors.NewRecordNotFound("email template", id)
	}
	delete(r.emailTpls, id)
	return nil
}

func (r campTplRepo) Create(ctx context.Context, t *model.CampaignTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = r.nextID("ct")
	}
	cp := *t
	r.campTpls[t.ID] = &cp
	return nil
}

func (r campTplRepo) GetByID(ctx context.Context, id string) (*model.CampaignTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.campTpls[id]
	if !ok {
		return nil, appErrors.NewRecordNotFound("campaign template", id)
	}
	cp := *t
	return &cp, nil
}

func (r campTplRepo) List(ctx context.Context, category string) ([]*model.CampaignTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.CampaignTemplate{}
	for _, t := range r.campTpls {
		if category == "" || t.Category == category {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsSystem != out[j].IsSystem {
			return out[i].IsSystem
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r campTplRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campTpls[id]; !ok {
		return appErrors.NewRecordNotFound("campaign template", id)
	}
	delete(r.campTpls, id)
	return nil
}

// --- audit ---

func (r auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = r.nextID("a")
	cp := *entry
	r.audit = append(r.audit, &cp)
	return nil
}

func (r auditRepo) filter(keep func(*model.AuditLog) bool, limit int) []*model.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.AuditLog{}
	for i := len(r.audit) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if keep(r.audit[i]) {
			cp := *r.audit[i]
			out = append(out, &cp)
		}
	}
	return out
}

func (r auditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*model.AuditLog, error) {
	newest := r.filter(func(a *model.AuditLog) bool {
		return a.EntityType == entityType && a.EntityID == entityID
	}, 0)
	for i, j := 0, len(newest)-1; i < j; i, j = i+1, j-1 {
		newest[i], newest[j] = newest[j], newest[i]
	}
	return newest, nil
}

func (r auditRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	return r.filter(func(*model.AuditLog) bool { return true }, limit), nil
}

func (r auditRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*model.AuditLog, error) {
	return r.filter(func(a *model.AuditLog) bool { return a.UserID != nil && *a.UserID == userID }, limit), nil
}

// --- dashboard ---

func (r dashboardRepo) Stats(ctx context.Context) (*model.SystemStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &model.SystemStats{
		TotalUsers:     len(r.users),
		TotalCampaigns: len(r.campaigns),
		TotalContacts:  len(r.contacts),
		TotalResponses: len(r.responses),
	}, nil
}

func (r dashboardRepo) UserSummaries(ctx context.Context) ([]*model.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.UserSummary{}
	for _, u := range r.users {
		s := &model.UserSummary{User: *u}
		for _, c := range r.campaigns {
			if c.CreatedBy == u.ID {
				s.CampaignsCreated++
			}
		}
		for _, a := range r.audit {
			if a.UserID != nil && *a.UserID == u.ID {
				s.TotalActions++
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- transport ---

// fakeTransport accepts every recipient except those listed in reject.
type fakeTransport struct {
	mu     sync.Mutex
	reject map[string]bool
	sent   []mailer.Message
	onSend func()
}

func (t *fakeTransport) Send(ctx context.Context, msg mailer.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.onSend != nil {
		t.onSend()
	}
	if t.reject[msg.To] {
		return errors.New("550 mailbox unavailable")
	}
	t.sent = append(t.sent, msg)
	return nil
}

type fakeFactory struct {
	transport *fakeTransport
	builtFor  []string
}

func (f *fakeFactory) Transport(cfg *model.EmailConfig) (mailer.Transport, error) {
	f.builtFor = append(f.builtFor, cfg.ID)
	return f.transport, nil
}

// recordingQueue captures published payloads synchronously.
type recordingQueue struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (q *recordingQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, payload)
	return q.err
}

func (q *recordingQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}
