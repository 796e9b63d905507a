// Package cli holds the backoffice commands and the wiring they share.
package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/possuite/backoffice/internal/api/metrics"
	"github.com/possuite/backoffice/internal/core/ports"
	"github.com/possuite/backoffice/internal/core/service"
	"github.com/possuite/backoffice/internal/infrastructure/db/mongo"
	"github.com/possuite/backoffice/internal/infrastructure/db/redis"
	"github.com/possuite/backoffice/internal/infrastructure/mail"
	"github.com/possuite/backoffice/internal/infrastructure/payment"
	"github.com/possuite/backoffice/internal/infrastructure/queue"
	"github.com/possuite/backoffice/internal/pkg/config"
	"github.com/possuite/backoffice/pkg/logger"
)

// app is the process's object graph.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	mongoClient *mongodriver.Client
	db          *mongodriver.Database
	rdb         *goredis.Client
	mailQueue   *queue.Dispatcher

	authenticator ports.Authenticator
	authorizer    ports.Authorizer
	limiter       ports.Limiter

	auth          *service.AuthService
	subscriptions *service.SubscriptionService
	stores        *service.StoreService
	roles         *service.RoleService
	staff         *service.StaffService
	products      *service.ProductService
	reports       *service.ReportService
}

// bootstrap loads configuration, connects to MongoDB and Redis, and builds
// every service. Callers must call close.
func bootstrap(ctx context.Context, serviceName string) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: serviceName,
	})

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	a := &app{cfg: cfg, log: log, mongoClient: client, db: db, rdb: rdb}
	a.wire()
	return a, nil
}

func (a *app) wire() {
	var mailer ports.Mailer = mail.NewLogMailer(a.log)
	if a.cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     a.cfg.Mail.Host,
			Port:     a.cfg.Mail.Port,
			Username: a.cfg.Mail.Username,
			Password: a.cfg.Mail.Password,
			From:     a.cfg.Mail.From,
		})
	}
	a.mailQueue = queue.NewDispatcher(a.cfg.Mail.Workers, mailer, a.log)

	repos := service.StoreRepos{
		Stores:   mongo.NewStoreRepository(a.db),
		Roles:    mongo.NewRoleRepository(a.db),
		Staff:    mongo.NewStaffRepository(a.db),
		Products: mongo.NewProductRepository(a.db),
		Usage:    mongo.NewUsageRepository(a.db),
		Counter:  mongo.NewResourceCounter(a.db),
	}
	owners := mongo.NewOwnerRepository(a.db)
	plans := mongo.NewPlanRepository(a.db)
	subs := mongo.NewSubscriptionRepository(a.db)
	cache := redis.NewSubscriptionCache(a.rdb, a.cfg.Redis.SubscriptionTTL)

	tokens := service.NewJWTCodec(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTIssuer, a.cfg.Auth.TokenTTL)
	a.authenticator = metrics.InstrumentAuthenticator(service.NewAuthenticator(tokens, owners, repos.Staff, a.log))
	a.authorizer = metrics.InstrumentAuthorizer(service.NewAuthorizer(repos.Stores, repos.Roles, a.log))
	a.limiter = metrics.InstrumentLimiter(service.NewSubscriptionLimiter(subs, plans, cache, a.log))

	verifier := payment.NewReferenceVerifier(redis.NewPaymentLedger(a.rdb), a.log)

	a.auth = service.NewAuthService(owners, repos.Staff, tokens,
		mail.NewVerificationSender(a.mailQueue, a.cfg.Mail.DashboardURL),
		service.AuthOptions{RequireEmailVerification: a.cfg.Auth.RequireEmailVerification},
		a.log)
	a.subscriptions = service.NewSubscriptionService(plans, subs, repos.Stores, repos.Counter, a.limiter, verifier, cache, a.log)
	a.stores = service.NewStoreService(repos, a.limiter, a.log)
	a.roles = service.NewRoleService(repos.Roles, repos.Staff, repos.Stores, a.limiter, a.log)
	a.staff = service.NewStaffService(repos, a.limiter, a.log)
	a.products = service.NewProductService(repos, a.limiter, a.log)
	a.reports = service.NewReportService(repos)
}

func (a *app) close() {
	ctx := context.Background()
	if err := a.rdb.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close redis")
	}
	if err := a.mongoClient.Disconnect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("disconnect mongo")
	}
}
