// Package app wires configuration, infrastructure and use cases together.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/adapters"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/migrations"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/repo"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/subscribers"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/cancel_subscription"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/create_subscription"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/get_subscription"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/list_customer_subscriptions"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/list_subscriptions_by_status"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/renew_due_subscriptions"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/renew_subscription"
	"github.com/wuyiadepoju/subscription-billing/internal/config"
	"github.com/wuyiadepoju/subscription-billing/internal/eventbus"
	"github.com/wuyiadepoju/subscription-billing/internal/httpapi"
	"github.com/wuyiadepoju/subscription-billing/internal/metrics"
	"go.uber.org/zap"
)

// Ports are the outbound collaborators of the lifecycle use cases.
type Ports struct {
	Repo      contracts.SubscriptionRepository
	Customers interface {
		contracts.CustomerLookup
		contracts.CustomerDirectory
	}
	Gateway contracts.PaymentGateway
	Mailer  contracts.Mailer
	Clock   domain.Clock
}

// Container holds the wired service.
type Container struct {
	Logger  *zap.Logger
	Bus     *eventbus.Bus
	Metrics *metrics.Collector

	Create          *create_subscription.Interactor
	Cancel          *cancel_subscription.Interactor
	Renew           *renew_subscription.Interactor
	Get             *get_subscription.Interactor
	ListForCustomer *list_customer_subscriptions.Interactor
	ListByStatus    *list_subscriptions_by_status.Interactor
	RenewDue        *renew_due_subscriptions.Interactor

	closers []func() error
}

// NewContainer connects to Spanner and the optional Redis and RabbitMQ
// backends described by cfg, then wires the use cases.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	var closers []func() error
	fail := func(err error) (*Container, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	// ----- Spanner -----
	dbPath := migrations.Options{
		ProjectID:  cfg.SpannerProject,
		InstanceID: cfg.SpannerInstance,
		DatabaseID: cfg.SpannerDatabase,
	}.DatabasePath()
	spannerClient, err := spanner.NewClient(ctx, dbPath, migrations.ClientOptions(cfg.SpannerEmulatorHost)...)
	if err != nil {
		return fail(fmt.Errorf("failed to create spanner client: %w", err))
	}
	closers = append(closers, func() error { spannerClient.Close(); return nil })

	// ----- Customers (optionally cached in Redis) -----
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	customerClient := adapters.NewHTTPCustomerClient(httpClient, cfg.CustomerServiceURL)
	var customers interface {
		contracts.CustomerLookup
		contracts.CustomerDirectory
	} = customerClient

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return fail(fmt.Errorf("failed to connect to Redis: %w", err))
		}
		closers = append(closers, rdb.Close)
		customers = adapters.NewCachedCustomers(customerClient, rdb, cfg.CustomerCacheTTL, logger)
		logger.Info("customer cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	// ----- Payment gateway -----
	gateway := adapters.NewBreakerGateway(
		adapters.NewHTTPPaymentGateway(httpClient, cfg.PaymentGatewayURL, cfg.PaymentGatewayAPIKey),
		adapters.BreakerSettings{
			MaxRequests:      cfg.BreakerMaxRequests,
			Interval:         cfg.BreakerInterval,
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: cfg.BreakerFailureThreshold,
		},
		logger,
	)

	// ----- Mailer -----
	var mailer contracts.Mailer = adapters.NewLogMailer(logger)
	if cfg.SMTPHost != "" {
		mailer = adapters.NewSMTPMailer(adapters.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPass,
			From:        cfg.SMTPFrom,
			ImplicitTLS: cfg.SMTPSecure,
		})
	}

	c := Wire(Ports{
		Repo:      repo.NewSubscriptionRepo(spannerClient),
		Customers: customers,
		Gateway:   gateway,
		Mailer:    mailer,
		Clock:     domain.RealClock{},
	}, logger)

	// ----- RabbitMQ forwarding (optional) -----
	if cfg.RabbitMQURL != "" {
		forwarder, err := eventbus.NewAMQPForwarder(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			return fail(err)
		}
		c.Bus.Subscribe(eventbus.AllEvents, forwarder.Handle)
		closers = append(closers, forwarder.Close)
	}

	c.closers = closers
	return c, nil
}

// Wire builds the bus, subscribers and use cases over the given ports.
func Wire(ports Ports, logger *zap.Logger) *Container {
	bus := eventbus.NewBus(logger)
	collector := metrics.NewCollector()
	bus.Subscribe(eventbus.AllEvents, collector.HandleEvent)
	subscribers.NewCancellationNotifier(ports.Customers, ports.Mailer, logger).Register(bus)

	renew := renew_subscription.NewInteractor(ports.Repo, ports.Gateway, bus, ports.Clock, logger)

	return &Container{
		Logger:          logger,
		Bus:             bus,
		Metrics:         collector,
		Create:          create_subscription.NewInteractor(ports.Repo, ports.Customers, ports.Gateway, bus, ports.Clock, logger),
		Cancel:          cancel_subscription.NewInteractor(ports.Repo, bus, ports.Clock, logger),
		Renew:           renew,
		Get:             get_subscription.NewInteractor(ports.Repo, logger),
		ListForCustomer: list_customer_subscriptions.NewInteractor(ports.Repo, logger),
		ListByStatus:    list_subscriptions_by_status.NewInteractor(ports.Repo, logger),
		RenewDue:        renew_due_subscriptions.NewInteractor(ports.Repo, renew, logger),
	}
}

// Router returns the HTTP API over the container's use cases.
func (c *Container) Router() *gin.Engine {
	return httpapi.NewRouter(httpapi.NewHandler(httpapi.UseCases{
		Create:          c.Create,
		Cancel:          c.Cancel,
		Renew:           c.Renew,
		Get:             c.Get,
		ListForCustomer: c.ListForCustomer,
		ListByStatus:    c.ListByStatus,
	}), c.Metrics, c.Logger)
}

// Close drains in-flight event deliveries and releases connections.
func (c *Container) Close() {
	c.Bus.Wait()
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("error during shutdown", zap.Error(err))
		}
	}
}
