package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

func TestContactListAddMembersCountsNewRows(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.ContactListRepository{DB: conn}

	mock.ExpectExec("INSERT INTO contact_list_members .* ON CONFLICT \\(list_id, contact_id\\) DO NOTHING").
		WithArgs("l1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.AddMembers(context.Background(), "l1", []string{"k1", "k2"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestContactListAddMembersEmptySkipsQuery(t *testing.T) {
	conn, _, done := newMock(t)
	defer done()
	repo := &repository.ContactListRepository{DB: conn}

	added, err := repo.AddMembers(context.Background(), "l1", nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestContactListGetByIDNotFound(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.ContactListRepository{DB: conn}

	mock.ExpectQuery("FROM contact_lists l WHERE l.id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_by", "created_at", "count"}))

	_, err := repo.GetByID(context.Background(), "missing")
	var nf *appErrors.ErrRecordNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "contact list", nf.Kind)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestContactListScopesByCreatorWithCount(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.ContactListRepository{DB: conn}
	now := time.Now().UTC()

	mock.ExpectQuery("FROM contact_lists l WHERE l.created_by = \\$1 ORDER BY l.created_at DESC").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_by", "created_at", "count"}).
			AddRow("l1", "VIPs", "", "u1", now, 3))

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ContactCount)
}

func TestCampaignListVisibleToIncludesShared(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.CampaignRepository{DB: conn}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM campaigns WHERE 1=1 AND \\(created_by = \\$1 OR EXISTS \\( SELECT 1 FROM campaign_permissions p").
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("p.user_id = \\$1 AND p.can_view\\)\\) ORDER BY created_at DESC").
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows(campaignCols))

	got, total, err := repo.List(context.Background(), repository.CampaignFilter{VisibleTo: "u2"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestCampaignPermissionGrantUpserts(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.CampaignPermissionRepository{DB: conn}

	mock.ExpectExec("INSERT INTO campaign_permissions .* ON CONFLICT \\(campaign_id, user_id\\) DO UPDATE").
		WithArgs("c1", "u2", true, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &model.CampaignPermission{CampaignID: "c1", UserID: "u2", CanView: true}
	require.NoError(t, repo.Grant(context.Background(), p))
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCampaignPermissionGrantUnknownUser(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.CampaignPermissionRepository{DB: conn}

	mock.ExpectExec("INSERT INTO campaign_permissions").WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Grant(context.Background(), &model.CampaignPermission{CampaignID: "c1", UserID: "ghost", CanView: true})
	var nf *appErrors.ErrUserNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.UserID)
}

func TestCampaignPermissionGetMissing(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.CampaignPermissionRepository{DB: conn}

	mock.ExpectQuery("FROM campaign_permissions WHERE campaign_id = \\$1 AND user_id = \\$2").
		WithArgs("c1", "u3").
		WillReturnRows(sqlmock.NewRows([]string{"campaign_id", "user_id", "can_view", "can_edit", "created_at"}))

	_, err := repo.Get(context.Background(), "c1", "u3")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCampaignTemplateListFiltersCategorySystemFirst(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.CampaignTemplateRepository{DB: conn}
	now := time.Now().UTC()
	owner := "u1"

	mock.ExpectQuery("FROM campaign_templates WHERE category = \\$1 ORDER BY is_system DESC, created_at DESC").
		WithArgs("feedback").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "category", "html_content", "thumbnail", "is_system", "created_by", "created_at",
		}).
			AddRow("t1", "NPS", "", "feedback", "<form/>", nil, true, nil, now).
			AddRow("t2", "Mine", "", "feedback", "<form/>", nil, false, owner, now))

	got, err := repo.List(context.Background(), "feedback")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsSystem)
	assert.Nil(t, got[0].CreatedBy)
	require.NotNil(t, got[1].CreatedBy)
	assert.Equal(t, "u1", *got[1].CreatedBy)
}

func TestEmailTemplateListVisibleIncludesPublic(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.EmailTemplateRepository{DB: conn}

	mock.ExpectQuery("FROM email_templates WHERE created_by = \\$1 OR is_public").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "subject", "html_content", "created_by", "is_public", "created_at",
		}))

	got, err := repo.ListVisible(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAuditListRecentJoinsUser(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.AuditRepository{DB: conn}
	now := time.Now().UTC()

	mock.ExpectQuery("FROM audit_logs a LEFT JOIN users u ON u.id = a.user_id ORDER BY a.created_at DESC, a.id LIMIT \\$1").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "action", "entity_type", "entity_id", "details", "created_at", "name", "email",
		}).
			AddRow("a1", "u1", "campaign.sent", "campaign", "c1", "sent=2 failed=0", now, "Olivia", "owner@x.io").
			AddRow("a2", nil, "campaign.deleted", "campaign", "c2", "", now, "", ""))

	got, err := repo.ListRecent(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "owner@x.io", got[0].UserEmail)
	assert.Nil(t, got[1].UserID)
}

func TestDashboardStats(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.DashboardRepository{DB: conn}

	mock.ExpectQuery("SELECT \\(SELECT COUNT\\(\\*\\) FROM users\\)").
		WillReturnRows(sqlmock.NewRows([]string{"u", "c", "k", "r"}).AddRow(3, 5, 40, 12))

	got, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SystemStats{TotalUsers: 3, TotalCampaigns: 5, TotalContacts: 40, TotalResponses: 12}, *got)
}

func TestUserDeleteWithCampaignsIsConflict(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.UserRepository{DB: conn}

	mock.ExpectExec("DELETE FROM users").WithArgs("u2").WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Delete(context.Background(), "u2")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestUserDeleteMissing(t *testing.T) {
	conn, mock, done := newMock(t)
	defer done()
	repo := &repository.UserRepository{DB: conn}

	mock.ExpectExec("DELETE FROM users").WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	var nf *appErrors.ErrUserNotFound
	assert.ErrorAs(t, err, &nf)
}
