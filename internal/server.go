package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/huyblog/blogservice/internal/auth"
	"github.com/huyblog/blogservice/internal/bio"
	"github.com/huyblog/blogservice/internal/config"
	"github.com/huyblog/blogservice/internal/db"
	"github.com/huyblog/blogservice/internal/deploy"
	"github.com/huyblog/blogservice/internal/middleware"
	"github.com/huyblog/blogservice/internal/posts"
	"github.com/huyblog/blogservice/internal/sociallinks"
	"github.com/huyblog/blogservice/internal/telemetry/metrics"
	"github.com/huyblog/blogservice/internal/telemetry/tracing"
	"github.com/huyblog/blogservice/internal/translate"
	"github.com/huyblog/blogservice/pkg"
)

const (
	serviceName      = "blog-backend"
	upstreamTimeout  = 90 * time.Second
	shutdownMaxWait  = 15 * time.Second
	sessionsCleanup  = auth.DefaultCleanupInterval
	defaultRedisPort = "6379"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	mongoClient *mongo.Client
	database    *mongo.Database
	dbPinger    db.Pinger

	redisClient  *redis.Client
	rateLimiter  middleware.RequestRateLimiter
	loginChecker auth.Checker
	authService  *auth.Service

	// nil when no Gemini API key is configured
	translator    translate.Translator
	deployer      deploy.Deployer
	webhookSecret string

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	now func() time.Time
}

type NewServerParams struct {
	Config                  *config.Config
	GeminiAPIKey            string
	WebhookSecret           string
	VersionInfo             string
	AdminUsername           string
	AdminPasswordHash       string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("blog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	mongoClient, err := db.NewMongoClient(ctx, db.NewMongoClientParams{
		URI:            cfg.MongoURI,
		AppName:        serviceName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new mongo client: %w", err)
	}
	database := mongoClient.Database(cfg.MongoDBName)
	log.Infof("connected to mongo, database: %s", cfg.MongoDBName)

	if err := posts.NewRepo(database).EnsureIndexes(ctx); err != nil {
		log.Warnf("failed to ensure posts indexes: %s", err)
	}

	redisPort := cfg.RedisPort
	if redisPort == "" {
		redisPort = defaultRedisPort
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, redisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName, rdb)
	if err != nil {
		return nil, err
	}

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	authService := auth.NewAuthService(&auth.Admin{
		Username:     params.AdminUsername,
		PasswordHash: params.AdminPasswordHash,
	}, sessionTTL, rdb)
	authService.StartCleanup(ctx, sessionsCleanup)

	s := &Server{
		config:        cfg,
		mongoClient:   mongoClient,
		database:      database,
		dbPinger:      db.ClientPinger{Client: mongoClient},
		versionInfo:   params.VersionInfo,
		webhookSecret: params.WebhookSecret,
		deployer:      deploy.NewScriptDeployer(cfg.DeployScript, cfg.DeployWorkDir),

		redisClient:  rdb,
		rateLimiter:  redis_rate.NewLimiter(rdb),
		authService:  authService,
		loginChecker: auth.NewLoginChecker(sessionTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,

		now: time.Now,
	}

	if params.GeminiAPIKey != "" {
		tracedHttpClient := &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   upstreamTimeout,
		}
		s.translator = translate.NewService(
			translate.NewGeminiApi(cfg.GeminiBaseURL, params.GeminiAPIKey, cfg.GeminiModel, tracedHttpClient),
			translate.NewCache(cfg.TranslateCacheSizeMB, cfg.TranslateCacheTTLSec),
			metricsManager,
		)
		log.Infof("translation enabled, model: %s", cfg.GeminiModel)
	} else {
		log.Warnln("GEMINI_API_KEY not set, translation disabled")
	}

	if params.WebhookSecret == "" {
		log.Warnln("WEBHOOK_SECRET not set, deploy webhook disabled")
	} else {
		warnIfDeployScriptMissing(cfg.DeployScript, cfg.DeployWorkDir)
	}

	return s, nil
}

func warnIfDeployScriptMissing(script, workDir string) {
	path := script
	if !filepath.IsAbs(path) && workDir != "" {
		path = filepath.Join(workDir, script)
	}
	exists, err := pkg.PathExists(path, false)
	if err != nil {
		log.Warnf("check deploy script %s: %s", path, err)
		return
	}
	if !exists {
		log.Warnf("deploy script %s not found, deploys will fail", path)
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("blog-router"))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteJSONError(w, http.StatusNotFound, "Not found")
	})

	r.HandleFunc("/health", healthHandler(s.dbPinger, s.now)).Methods("GET").Name("health")

	api := r.PathPrefix("/api").Subrouter()

	posts.NewHandler(posts.NewRepo(s.database), s.metricsManager).SetupRoutes(api)
	sociallinks.NewHandler(sociallinks.NewRepo(s.database), s.metricsManager).SetupRoutes(api)
	bio.NewHandler(bio.NewRepo(s.database), s.metricsManager).SetupRoutes(api)

	translateRouter := api.NewRoute().Subrouter()
	translateRouter.Use(middleware.RateLimit(s.rateLimiter, "translate", s.config.TranslateRateLimitPerMin, s.metricsManager))
	translate.NewHandler(s.translator).SetupRoutes(translateRouter)

	// rate limit the login and logout endpoints to prevent abuse
	authRouter := api.NewRoute().Subrouter()
	authRouter.Use(middleware.RateLimit(s.rateLimiter, "login", s.config.LoginRateLimitPerMin, s.metricsManager))
	auth.NewHandler(s.authService).SetupRoutes(authRouter)

	deploy.NewHandler(s.webhookSecret, s.deployer, s.metricsManager).SetupRoutes(api)

	authMiddleware := middleware.NewAuthMiddlewareHandler(
		s.config.RequireAuth,
		s.loginChecker,
	)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LimitRequestBody(s.config.MaxBodyBytes))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

// Serve binds both listeners and returns once they accept connections.
// A taken address is reported as an error.
func (s *Server) Serve(host string, port int) error {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:           s.routerSetup(),
		Addr:              ipAndPort,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      deploy.DefaultTimeout + time.Minute,
		ConnState:         s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", ipAndPort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ipAndPort, err)
	}
	metricsListener, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("metrics listen on %s: %w", metricsAddr, err)
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		if err := s.metricsHttpServer.Serve(metricsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
	return nil
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), shutdownMaxWait)
	defer timeoutCancel()

	var g errgroup.Group
	for name, srv := range map[string]*http.Server{
		"http":    s.httpServer,
		"metrics": s.metricsHttpServer,
	} {
		if srv == nil {
			continue
		}
		name, srv := name, srv
		g.Go(func() error {
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown %s server: %w", name, err)
			}
			log.Warnf("%s server shut down", name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorf(" >>> failed to gracefully shutdown: %s", err)
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.mongoClient != nil {
		log.Debugln("disconnecting mongo client ...")
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			log.Errorf("failed to disconnect mongo client: %s", err)
		}
		log.Debugln("mongo client disconnected")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
