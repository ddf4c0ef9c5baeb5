package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/api"
	"github.com/stacklok/roster-sync/internal/app/storage"
	"github.com/stacklok/roster-sync/internal/config"
	"github.com/stacklok/roster-sync/internal/coordinator"
	"github.com/stacklok/roster-sync/internal/events"
	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/roster"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/status"
	"github.com/stacklok/roster-sync/internal/telemetry"
)

const (
	defaultHTTPAddress = ":8080"
	// Section creation enrolls a whole roster within one request
	defaultRequestTimeout = 5 * time.Minute
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Minute
	defaultIdleTimeout    = 60 * time.Second
)

// RosterAppOptions is a function that configures the roster app builder
type RosterAppOptions func(*rosterAppConfig) error

type rosterAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	storageFactory storage.Factory
	clientFactory  ClientFactory
	jitter         *time.Duration

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...RosterAppOptions) (*rosterAppConfig, error) {
	cfg := &rosterAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		clientFactory:  DefaultClientFactory,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return cfg, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithClientFactory allows injecting the LMS clients (for testing)
func WithClientFactory(f ClientFactory) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		if f == nil {
			return fmt.Errorf("client factory cannot be nil")
		}
		cfg.clientFactory = f
		return nil
	}
}

// WithSchedulingJitter overrides the random delay added to scheduled reconciliation runs
func WithSchedulingJitter(d time.Duration) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.jitter = &d
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider
func WithMeterProvider(mp metric.MeterProvider) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler exposes a Prometheus scrape handler on /metrics
func WithMetricsHandler(h http.Handler) RosterAppOptions {
	return func(cfg *rosterAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// tracer returns nil without a provider so that components skip tracing
func (b *rosterAppConfig) tracer(name string) trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(name)
}

// NewComponents builds the store, institutions, event dispatcher, status service and coordinator.
// The caller must Close the returned components.
func NewComponents(ctx context.Context, opts ...RosterAppOptions) (*AppComponents, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildComponents(ctx, cfg)
}

func buildComponents(ctx context.Context, b *rosterAppConfig) (*AppComponents, error) {
	slog.Info("Initializing components", "institution_count", len(b.config.Institutions))

	if b.storageFactory == nil {
		factory, err := storage.NewStorageFactory(ctx, b.config, storage.WithTracer(b.tracer(sis.StoreTracerName)))
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
		b.storageFactory = factory
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			b.storageFactory.Cleanup()
		}
	}()

	store, err := b.storageFactory.CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create SIS store: %w", err)
	}
	persistence, err := b.storageFactory.CreateStatusPersistence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create status persistence: %w", err)
	}
	reports, err := b.storageFactory.CreateReportStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}

	eventMetrics, err := telemetry.NewEventMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create event metrics: %w", err)
	}
	reconcileMetrics, err := telemetry.NewReconcileMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciliation metrics: %w", err)
	}
	lmsMetrics, err := telemetry.NewLMSMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create LMS metrics: %w", err)
	}

	statusSvc := status.NewService(persistence)

	dispatcherOpts := []events.Option{
		events.WithStore(store),
		events.WithBatchSize(b.config.GetEventsBatchSize()),
		events.WithConcurrency(b.config.GetEventsConcurrency()),
		events.WithInterval(b.config.GetEventsInterval()),
		events.WithMetrics(eventMetrics),
		events.WithTracer(b.tracer(events.TracerName)),
	}
	coordOpts := []coordinator.Option{coordinator.WithStatusService(statusSvc)}
	if b.jitter != nil {
		coordOpts = append(coordOpts, coordinator.WithJitter(*b.jitter))
	}

	var institutions []*Institution
	for i := range b.config.Institutions {
		ic := &b.config.Institutions[i]
		route := events.Route{Institution: ic.Name, Discriminator: ic.TermDiscriminator, Enabled: ic.Enabled}

		if !ic.Enabled {
			slog.Info("Institution disabled, its events will be discarded", "institution", ic.Name)
			dispatcherOpts = append(dispatcherOpts, events.WithRoute(route))
			continue
		}

		inst, err := b.buildInstitution(ic, store, reports, statusSvc, lmsMetrics, reconcileMetrics)
		if err != nil {
			return nil, fmt.Errorf("failed to build institution %s: %w", ic.Name, err)
		}
		institutions = append(institutions, inst)

		route.Operations = inst.Operations
		dispatcherOpts = append(dispatcherOpts, events.WithRoute(route))

		var interval time.Duration
		if ic.ReconcileEnabled() {
			interval = ic.GetReconcileInterval()
		}
		coordOpts = append(coordOpts, coordinator.WithJob(coordinator.Job{
			Institution: ic.Name,
			Interval:    interval,
			Engine:      inst.Engine,
		}))
	}

	dispatcher, err := events.New(dispatcherOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create event dispatcher: %w", err)
	}
	if b.config.EventsEnabled() {
		coordOpts = append(coordOpts, coordinator.WithDispatcher(dispatcher))
	} else {
		slog.Info("Event ingestion disabled")
	}

	coord, err := coordinator.New(coordOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}

	cleanupNeeded = false
	slog.Info("Components initialized successfully", "enabled_institutions", len(institutions))

	return &AppComponents{
		Store:         store,
		Institutions:  institutions,
		Dispatcher:    dispatcher,
		Reports:       reports,
		StatusService: statusSvc,
		Coordinator:   coord,
		cleanup:       b.storageFactory.Cleanup,
	}, nil
}

func (b *rosterAppConfig) buildInstitution(
	ic *config.InstitutionConfig,
	store sis.Store,
	reports reconcile.ReportStore,
	statusSvc status.Service,
	lmsMetrics *telemetry.LMSMetrics,
	reconcileMetrics *telemetry.ReconcileMetrics,
) (*Institution, error) {
	client, err := b.clientFactory(ic,
		lms.WithMetrics(lmsMetrics),
		lms.WithTracer(b.tracer(lms.ClientTracerName)),
	)
	if err != nil {
		return nil, err
	}

	ops, err := roster.New(
		roster.WithStore(store),
		roster.WithClient(client),
		roster.WithInstitution(ic.Name),
		roster.WithCleanupMode(roster.CleanupMode(b.config.GetCleanupMode())),
		roster.WithTracer(b.tracer(roster.TracerName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create roster operations: %w", err)
	}

	engine, err := reconcile.New(
		reconcile.WithInstitution(ic.Name),
		reconcile.WithStore(store),
		reconcile.WithClient(client),
		reconcile.WithOperations(ops),
		reconcile.WithReportStore(reports),
		reconcile.WithBlacklist(ic.GetBlacklistedTerms()),
		reconcile.WithPersonPattern(ic.GetPersonPattern()),
		reconcile.WithPhaseListener(coordinator.StatusListener(statusSvc, ic.Name)),
		reconcile.WithMetrics(reconcileMetrics),
		reconcile.WithTracer(b.tracer(reconcile.TracerName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconciliation engine: %w", err)
	}

	return &Institution{
		Name:       ic.Name,
		Config:     ic,
		Client:     client,
		Operations: ops,
		Engine:     engine,
	}, nil
}

// NewRosterApp builds the components and the HTTP server
func NewRosterApp(ctx context.Context, opts ...RosterAppOptions) (*RosterApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build components: %w", err)
	}

	httpServer, err := buildHTTPServer(cfg, components)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	return &RosterApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(b *rosterAppConfig, components *AppComponents) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	middlewares := b.middlewares
	if middlewares == nil {
		middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing come first so that every request is observed
	httpMetrics, err := telemetry.NewHTTPMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	middlewares = append([]func(http.Handler) http.Handler{
		telemetry.TracingMiddleware(b.tracerProvider),
		httpMetrics.Middleware,
	}, middlewares...)

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
		api.WithReportStore(components.Reports),
	}
	for _, inst := range components.Institutions {
		serverOpts = append(serverOpts, api.WithInstitution(inst.Name, inst.Operations))
	}

	router := api.NewServer(components.Store, components.Coordinator, components.StatusService, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
