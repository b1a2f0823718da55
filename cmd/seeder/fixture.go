package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

// Fixture is the YAML seed file layout.
type Fixture struct {
	Users        []service.UserInput   `yaml:"users"`
	EmailConfigs []fixtureConfig       `yaml:"email_configs"`
	Contacts     []model.ContactImport `yaml:"contacts"`
	Campaigns    []fixtureCampaign     `yaml:"campaigns"`
	// Built-in campaign templates, installed as system templates.
	Templates []model.CampaignTemplate `yaml:"campaign_templates"`
}

type fixtureConfig struct {
	Name       string `yaml:"name"`
	Host       string `yaml:"smtp_host"`
	Port       int    `yaml:"smtp_port"`
	User       string `yaml:"smtp_user"`
	Password   string `yaml:"smtp_password"`
	FromEmail  string `yaml:"from_email"`
	FromName   string `yaml:"from_name"`
	Default    bool   `yaml:"default"`
	DailyLimit int    `yaml:"daily_limit"`
}

type fixtureCampaign struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	SubjectLine *string `yaml:"subject_line"`
	FormHTML    string  `yaml:"form_html"`
	Owner       string  `yaml:"owner"` // email of a seeded user
}

func loadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	defaults := 0
	for _, c := range f.EmailConfigs {
		if c.Name == "" {
			return appErrors.Validation("email config without a name")
		}
		if c.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return appErrors.Validation("%d email configs marked default", defaults)
	}
	users := map[string]bool{}
	for _, u := range f.Users {
		users[u.Email] = true
	}
	for _, c := range f.Campaigns {
		if !users[c.Owner] {
			return appErrors.Validation("campaign %q owner %q is not a seeded user", c.Name, c.Owner)
		}
	}
	for _, t := range f.Templates {
		if t.Name == "" || t.HTMLContent == "" {
			return appErrors.Validation("campaign template needs a name and html_content")
		}
	}
	return nil
}

type seeder struct {
	Users     *service.UserService
	Resolver  *service.ConfigResolver
	Contacts  *service.ContactService
	Campaigns *service.CampaignService
	Templates *service.TemplateLibrary
}

// SeedReport counts what a run created. Rows that already exist are skipped,
// so seeding twice is harmless.
type SeedReport struct {
	Users     int
	Configs   int
	Contacts  model.ImportResult
	Campaigns int
	Templates int
}

func (s *seeder) apply(ctx context.Context, f *Fixture) (*SeedReport, error) {
	log := logger.From(ctx)
	report := &SeedReport{}

	ids := map[string]model.Identity{}
	for _, in := range f.Users {
		u, err := s.Users.Bootstrap(ctx, in)
		if errors.Is(err, appErrors.ErrConflict) {
			u, err = s.Users.GetByEmail(ctx, in.Email)
			if err != nil {
				return nil, err
			}
			log.Info("user exists, skipping", logger.Email(in.Email))
		} else if err != nil {
			return nil, fmt.Errorf("user %s: %w", in.Email, err)
		} else {
			report.Users++
		}
		ids[u.Email] = model.Identity{UserID: u.ID, Role: u.Role}
	}

	seedActor := model.Identity{Role: model.RoleOwner}
	existing, err := s.Resolver.List(ctx)
	if err != nil {
		return nil, err
	}
	names := map[string]bool{}
	for _, c := range existing {
		names[c.Name] = true
	}
	for _, fc := range f.EmailConfigs {
		if names[fc.Name] {
			log.Info("email config exists, skipping", logger.String("name", fc.Name))
			continue
		}
		cfg := &model.EmailConfig{
			Name:         fc.Name,
			SMTPHost:     fc.Host,
			SMTPPort:     fc.Port,
			SMTPUser:     fc.User,
			SMTPPassword: fc.Password,
			FromEmail:    fc.FromEmail,
			FromName:     fc.FromName,
			IsDefault:    fc.Default,
			DailyLimit:   fc.DailyLimit,
		}
		if err := s.Resolver.Create(ctx, seedActor, cfg); err != nil {
			return nil, fmt.Errorf("email config %s: %w", fc.Name, err)
		}
		report.Configs++
	}

	imported, err := s.Contacts.Import(ctx, f.Contacts)
	if err != nil {
		return nil, err
	}
	report.Contacts = *imported

	for _, fc := range f.Campaigns {
		actor := ids[fc.Owner]
		owned, _, err := s.Campaigns.CampaignRepo.List(ctx, repository.CampaignFilter{CreatedBy: actor.UserID, Limit: 1000})
		if err != nil {
			return nil, err
		}
		if hasCampaign(owned, fc.Name) {
			log.Info("campaign exists, skipping", logger.String("name", fc.Name))
			continue
		}
		_, err = s.Campaigns.CreateCampaign(ctx, actor, service.CampaignInput{
			Name:        fc.Name,
			Description: fc.Description,
			FormHTML:    fc.FormHTML,
			SubjectLine: fc.SubjectLine,
		})
		if err != nil {
			return nil, fmt.Errorf("campaign %s: %w", fc.Name, err)
		}
		report.Campaigns++
	}

	if len(f.Templates) == 0 {
		return report, nil
	}
	installed, err := s.Templates.ListCampaignTemplates(ctx, "")
	if err != nil {
		return nil, err
	}
	system := map[string]bool{}
	for _, t := range installed {
		if t.IsSystem {
			system[t.Name] = true
		}
	}
	for _, t := range f.Templates {
		if system[t.Name] {
			log.Info("system template exists, skipping", logger.String("name", t.Name))
			continue
		}
		if err := s.Templates.InstallSystemTemplate(ctx, &t); err != nil {
			return nil, fmt.Errorf("campaign template %s: %w", t.Name, err)
		}
		report.Templates++
	}
	return report, nil
}

func hasCampaign(list []*model.Campaign, name string) bool {
	for _, c := range list {
		if c.Name == name {
			return true
		}
	}
	return false
}
