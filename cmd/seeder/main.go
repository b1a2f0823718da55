// cmd/seeder/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-mailer/internal/auth"
	"github.com/unclebandit/campaign-mailer/internal/config"
	"github.com/unclebandit/campaign-mailer/internal/db"
	"github.com/unclebandit/campaign-mailer/internal/db/migrations"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/repository"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

func main() {
	var (
		cfg  *config.Config
		conn *sql.DB
	)

	root := &cobra.Command{
		Use:           "seeder",
		Short:         "Database setup for the campaign mailer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, _, err = config.Load()
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel, ServiceName: "campaign-seeder"})
			conn, err = db.Open(cfg.DBConfig)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if conn != nil {
				conn.Close()
			}
			logger.Sync()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := db.Migrate(cmd.Context(), conn, migrations.FS)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Println("applied:", name)
			}
			if len(applied) == 0 {
				fmt.Println("schema up to date")
			}
			return nil
		},
	}

	var fixturePath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then load users, email configs, contacts, campaigns and templates from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := db.Migrate(ctx, conn, migrations.FS); err != nil {
				return err
			}

			campaignRepo := &repository.CampaignRepository{DB: conn}
			contactRepo := &repository.ContactRepository{DB: conn}
			s := &seeder{
				Users:    &service.UserService{UserRepo: &repository.UserRepository{DB: conn}, BcryptCost: cfg.BcryptCost},
				Resolver: &service.ConfigResolver{ConfigRepo: &repository.EmailConfigRepository{DB: conn}},
				Contacts: &service.ContactService{ContactRepo: contactRepo},
				Campaigns: &service.CampaignService{
					CampaignRepo: campaignRepo,
					ContactRepo:  contactRepo,
					FormBaseURL:  cfg.FormBaseURL,
				},
				Templates: &service.TemplateLibrary{
					EmailTemplates:    &repository.EmailTemplateRepository{DB: conn},
					CampaignTemplates: &repository.CampaignTemplateRepository{DB: conn},
				},
			}
			report, err := s.apply(ctx, f)
			if err != nil {
				return err
			}
			logger.L().Info("database seeding completed",
				zap.Int("users", report.Users),
				zap.Int("email_configs", report.Configs),
				zap.Int("contacts_imported", report.Contacts.Imported),
				zap.Int("contacts_skipped", report.Contacts.Skipped),
				zap.Int("campaigns", report.Campaigns),
				zap.Int("system_templates", report.Templates),
			)
			return nil
		},
	}
	seedCmd.Flags().StringVarP(&fixturePath, "file", "f", "seed/fixtures.yaml", "YAML fixture to load")

	var email, password string
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			users := &service.UserService{UserRepo: &repository.UserRepository{DB: conn}}
			u, err := users.GetByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if password != "" && !service.CheckPassword(u, password) {
				return fmt.Errorf("password does not match")
			}
			tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
			token, exp, err := tokens.Issue(u)
			if err != nil {
				return err
			}
			fmt.Println(token)
			fmt.Fprintf(os.Stderr, "expires %s (role %s)\n", exp.Format("2006-01-02 15:04 MST"), u.Role)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&email, "email", "", "user email")
	tokenCmd.Flags().StringVar(&password, "password", "", "verify this password before issuing")

	root.AddCommand(migrateCmd, seedCmd, tokenCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
