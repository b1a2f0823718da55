// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-mailer/internal/auth"
	"github.com/unclebandit/campaign-mailer/internal/config"
	"github.com/unclebandit/campaign-mailer/internal/controller"
	"github.com/unclebandit/campaign-mailer/internal/db"
	"github.com/unclebandit/campaign-mailer/internal/db/migrations"
	"github.com/unclebandit/campaign-mailer/internal/handler"
	"github.com/unclebandit/campaign-mailer/internal/lock"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/mailer"
	"github.com/unclebandit/campaign-mailer/internal/metrics"
	"github.com/unclebandit/campaign-mailer/internal/middleware"
	"github.com/unclebandit/campaign-mailer/internal/queue"
	"github.com/unclebandit/campaign-mailer/internal/repository"
	"github.com/unclebandit/campaign-mailer/internal/service"
)

func main() {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		logger.L().Fatal("invalid configuration", logger.Err(err))
	}
	logger.Init(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel, ServiceName: "campaign-server"})
	defer logger.Sync()
	log := logger.L()
	if !foundEnv {
		log.Warn("no .env file found, relying on OS environment variables")
	}

	conn, err := db.Open(cfg.DBConfig)
	if err != nil {
		log.Fatal("database unavailable", logger.Err(err))
	}
	defer conn.Close()

	applied, err := db.Migrate(context.Background(), conn, migrations.FS)
	if err != nil {
		log.Fatal("migrations failed", logger.Err(err))
	}
	if len(applied) > 0 {
		log.Info("migrations applied", zap.Strings("files", applied))
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}
	configRepo := &repository.EmailConfigRepository{DB: conn}
	responseRepo := &repository.FormResponseRepository{DB: conn}
	userRepo := &repository.UserRepository{DB: conn}
	auditRepo := &repository.AuditRepository{DB: conn}
	listRepo := &repository.ContactListRepository{DB: conn}

	// Events go to RabbitMQ for cmd/worker when configured, otherwise they
	// are audited in-process.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		aq, err := queue.DialAMQP(cfg.AMQPURL)
		if err != nil {
			log.Fatal("rabbitmq unavailable", logger.Err(err))
		}
		defer aq.Close()
		q = aq
	} else {
		mq := queue.NewInMemoryQueue()
		if err := queue.StartAuditSubscriber(mq, auditRepo); err != nil {
			log.Fatal("audit subscriber", logger.Err(err))
		}
		q = mq
	}

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.RedisAddr != "" {
		client, err := lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("redis unavailable", logger.Err(err))
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.SendLockTTL)
	}

	m, err := metrics.New(nil)
	if err != nil {
		log.Fatal("metrics", logger.Err(err))
	}

	resolver := &service.ConfigResolver{ConfigRepo: configRepo}
	campaignService := &service.CampaignService{
		CampaignRepo:   campaignRepo,
		ContactRepo:    contactRepo,
		DeliveryRepo:   deliveryRepo,
		ResponseRepo:   responseRepo,
		PermissionRepo: &repository.CampaignPermissionRepository{DB: conn},
		Queue:          q,
		FormBaseURL:    cfg.FormBaseURL,
	}
	dispatcher := &service.Dispatcher{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		DeliveryRepo: deliveryRepo,
		ListRepo:     listRepo,
		Resolver:     resolver,
		Transports:   mailer.NewCachedFactory(mailer.SMTPFactory{Timeout: cfg.SMTPTimeout}, cfg.TransportCacheTTL),
		Locker:       locker,
		Queue:        q,
		Metrics:      m,
		FormBaseURL:  cfg.FormBaseURL,
	}
	responseService := &service.ResponseService{CampaignRepo: campaignRepo, ContactRepo: contactRepo, ResponseRepo: responseRepo}

	campaignController := &controller.CampaignController{CampaignService: campaignService, Dispatcher: dispatcher}
	contactController := &controller.ContactController{ContactService: &service.ContactService{ContactRepo: contactRepo}}
	configController := &controller.EmailConfigController{Resolver: resolver}
	userController := &controller.UserController{UserService: &service.UserService{UserRepo: userRepo, BcryptCost: cfg.BcryptCost}}
	formController := &controller.FormController{ResponseService: responseService}
	listController := &controller.ContactListController{
		Lists: &service.ContactListService{ListRepo: listRepo, ContactRepo: contactRepo},
	}
	templateController := &controller.TemplateController{
		Library: &service.TemplateLibrary{
			EmailTemplates:    &repository.EmailTemplateRepository{DB: conn},
			CampaignTemplates: &repository.CampaignTemplateRepository{DB: conn},
		},
		Campaigns: campaignService,
	}
	campaignHandler := handler.NewCampaignHandler(campaignService, responseService)
	activityHandler := &handler.ActivityHandler{Activity: &service.ActivityService{
		AuditRepo:     auditRepo,
		DashboardRepo: &repository.DashboardRepository{DB: conn},
		UserRepo:      userRepo,
	}}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestLogger, m.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.PingContext(r.Context()); err != nil {
			controller.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		controller.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", m.Handler())

	// Public form
	r.Get("/form/{campaignID}/{contactID}", formController.ShowForm)
	r.Post("/form/{campaignID}/{contactID}", formController.SubmitForm)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))

		r.Get("/me", userController.Me)
		r.Get("/users", userController.ListUsers)
		r.Post("/users", userController.CreateUser)
		r.Delete("/users/{id}", userController.DeleteUser)
		r.Get("/users/{id}/activity", activityHandler.UserActivityHandler)
		r.Get("/dashboard", activityHandler.DashboardHandler)

		r.Get("/contacts", contactController.ListContacts)
		r.Post("/contacts", contactController.CreateContact)
		r.Post("/contacts/import", contactController.ImportContacts)
		r.Put("/contacts/{id}", contactController.UpdateContact)
		r.Delete("/contacts/{id}", contactController.DeleteContact)

		r.Get("/contact-lists", listController.ListLists)
		r.Post("/contact-lists", listController.CreateList)
		r.Delete("/contact-lists/{id}", listController.DeleteList)
		r.Get("/contact-lists/{id}/contacts", listController.ListMembers)
		r.Post("/contact-lists/{id}/contacts", listController.AddContacts)

		r.Get("/email-templates", templateController.ListEmailTemplates)
		r.Post("/email-templates", templateController.CreateEmailTemplate)
		r.Delete("/email-templates/{id}", templateController.DeleteEmailTemplate)
		r.Get("/campaign-templates", templateController.ListCampaignTemplates)
		r.Post("/campaign-templates", templateController.CreateCampaignTemplate)
		r.Delete("/campaign-templates/{id}", templateController.DeleteCampaignTemplate)
		r.Post("/campaign-templates/{id}/campaigns", templateController.UseCampaignTemplate)

		r.Get("/email-configs", configController.ListConfigs)
		r.Post("/email-configs", configController.CreateConfig)
		r.Put("/email-configs/{id}", configController.UpdateConfig)
		r.Post("/email-configs/{id}/default", configController.SetDefault)

		// Campaign routes
		r.Post("/campaigns", campaignController.CreateCampaign)
		r.Get("/campaigns", campaignController.ListCampaigns)
		r.Get("/campaigns/{id}", campaignController.GetCampaign)
		r.Put("/campaigns/{id}", campaignController.UpdateCampaign)
		r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)
		r.Post("/campaigns/{id}/schedule", campaignController.ScheduleCampaign)
		r.Post("/campaigns/{id}/send", campaignController.SendCampaign)
		r.Post("/campaigns/{id}/preview", campaignController.PersonalizedPreview)
		r.Post("/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)
		r.Get("/campaigns/{id}/analytics", campaignHandler.AnalyticsHandler)
		r.Get("/campaigns/{id}/deliveries", campaignHandler.DeliveriesHandler)
		r.Get("/campaigns/{id}/responses", campaignHandler.ResponsesHandler)
		r.Get("/campaigns/{id}/audit", activityHandler.CampaignHistoryHandler)
		r.Get("/campaigns/{id}/permissions", campaignController.ListPermissions)
		r.Post("/campaigns/{id}/permissions", campaignController.ShareCampaign)
		r.Delete("/campaigns/{id}/permissions/{userID}", campaignController.UnshareCampaign)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", logger.Err(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", logger.Err(err))
	}
	if mq, ok := q.(*queue.InMemoryQueue); ok {
		mq.Wait()
	}
	log.Info("server stopped")
}
