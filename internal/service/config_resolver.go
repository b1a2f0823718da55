package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// ConfigResolver owns email configurations: choosing the one a send uses
// and keeping a single default.
type ConfigResolver struct {
	ConfigRepo repository.EmailConfigRepositoryInterface
}

// Resolve returns the configuration with configID, or the default one when
// configID is empty. It is re-read on every call.
func (r *ConfigResolver) Resolve(ctx context.Context, configID string) (*model.EmailConfig, error) {
	if configID != "" {
		return r.ConfigRepo.GetByID(ctx, configID)
	}
	return r.ConfigRepo.GetDefault(ctx)
}

// SetDefault makes configID the only default configuration.
func (r *ConfigResolver) SetDefault(ctx context.Context, actor model.Identity, configID string) error {
	if !actor.CanManage() {
		return appErrors.ErrForbidden
	}
	if err := r.ConfigRepo.SetDefault(ctx, configID); err != nil {
		return err
	}
	logger.From(ctx).Info("default email configuration changed", logger.ConfigID(configID), logger.UserID(actor.UserID))
	return nil
}

func (r *ConfigResolver) Create(ctx context.Context, actor model.Identity, cfg *model.EmailConfig) error {
	if !actor.CanManage() {
		return appErrors.ErrForbidden
	}
	if err := validateEmailConfig(cfg); err != nil {
		return err
	}
	return r.ConfigRepo.Create(ctx, cfg)
}

// Update changes connection settings. The default flag is ignored here.
func (r *ConfigResolver) Update(ctx context.Context, actor model.Identity, cfg *model.EmailConfig) error {
	if !actor.CanManage() {
		return appErrors.ErrForbidden
	}
	if err := validateEmailConfig(cfg); err != nil {
		return err
	}
	existing, err := r.ConfigRepo.GetByID(ctx, cfg.ID)
	if err != nil {
		return err
	}
	// An empty password keeps the stored one.
	if cfg.SMTPPassword == "" {
		cfg.SMTPPassword = existing.SMTPPassword
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = existing.DailyLimit
	}
	cfg.IsDefault = existing.IsDefault
	cfg.CreatedAt = existing.CreatedAt
	return r.ConfigRepo.Update(ctx, cfg)
}

func (r *ConfigResolver) List(ctx context.Context) ([]*model.EmailConfig, error) {
	return r.ConfigRepo.List(ctx)
}

func validateEmailConfig(cfg *model.EmailConfig) error {
	switch {
	case strings.TrimSpace(cfg.Name) == "":
		return appErrors.Validation("name is required")
	case strings.TrimSpace(cfg.SMTPHost) == "":
		return appErrors.Validation("smtp_host is required")
	case cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535:
		return appErrors.Validation("smtp_port %d is out of range", cfg.SMTPPort)
	case strings.TrimSpace(cfg.FromEmail) == "":
		return appErrors.Validation("from_email is required")
	}
	return nil
}
