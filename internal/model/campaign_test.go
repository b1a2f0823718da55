package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.CampaignStatus
		ok       bool
	}{
		{model.StatusDraft, model.StatusScheduled, true},
		{model.StatusDraft, model.StatusSent, true},
		{model.StatusScheduled, model.StatusSent, true},
		{model.StatusScheduled, model.StatusScheduled, true},
		{model.StatusScheduled, model.StatusDraft, false},
		{model.StatusSent, model.StatusScheduled, false},
		{model.StatusSent, model.StatusSent, false},
		{model.StatusSent, model.StatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, model.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSubjectFallsBackToName(t *testing.T) {
	c := &model.Campaign{Name: "Spring survey"}
	assert.Equal(t, "Spring survey", c.Subject())

	empty := ""
	c.SubjectLine = &empty
	assert.Equal(t, "Spring survey", c.Subject())

	line := "Tell us what you think"
	c.SubjectLine = &line
	assert.Equal(t, "Tell us what you think", c.Subject())
}
