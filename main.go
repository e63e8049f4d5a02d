package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipcast/domain/repository"
	"clipcast/infrastructure/cache"
	"clipcast/infrastructure/clients/platform"
	"clipcast/infrastructure/configuration"
	"clipcast/infrastructure/logger"
	"clipcast/infrastructure/metrics"
	"clipcast/infrastructure/persistence"
	"clipcast/infrastructure/pubsub"
	"clipcast/infrastructure/realtime"
	"clipcast/infrastructure/servicebus"
	httpHandler "clipcast/interfaces/http"
	"clipcast/server"
	"clipcast/usecase"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// OS env keeps precedence over files
	if n := configuration.LoadEnvFromFile("config.env", ".env"); n > 0 {
		logger.GetLogger().WithField("vars", n).Info("Loaded environment from file")
		configuration.Reload()
	}
	app := configuration.C.App

	campaignDb, campaignRepository, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Campaign database initialization failed")
	}
	defer campaignDb.Close()

	catalogDb, err := persistence.NewRepositories()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Catalog database initialization failed")
	}
	catalogRepository := persistence.NewCatalogRepository(catalogDb)
	if err := catalogRepository.Migrate(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while migrating catalog tables")
	}

	mongoDb := initiateMongo(ctx)
	if mongoDb != nil {
		defer func() { _ = mongoDb.Disconnect(context.Background()) }()
	}
	postAudit := persistence.NewPostAuditRepository(mongoDb, configuration.C.Database.Mongo.Name)

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - campaign cache will miss until it recovers")
	}
	campaignCache := cache.NewCampaignCache(redisClient, time.Duration(configuration.C.Campaign.CacheTTLSeconds)*time.Second)

	publishers, static, closers := initiatePublishers(ctx)
	eventPublisher := usecase.NewEventFanout(publishers...)

	collector := metrics.NewCollector("clipcast")
	postHub := realtime.NewPostHub()
	platformPublisher := platform.NewMockPublisher(app.PublicBaseURL)

	campaignUsecase := usecase.NewCampaignUsecase(campaignRepository, catalogRepository, eventPublisher, campaignCache, collector,
		usecase.WithPostAudit(postAudit),
	)
	catalogUsecase := usecase.NewCatalogUsecase(catalogRepository, nil)
	dispatchUsecase := usecase.NewDispatchUsecase(campaignRepository, catalogRepository, platformPublisher, postAudit, eventPublisher, campaignCache, postHub, collector)
	healthUsecase := usecase.NewHealthUsecase("campaignDb", map[string]usecase.Pinger{
		"campaignDb": campaignDb,
		"catalogDb":  usecase.PingFunc(catalogRepository.Ping),
		"redis":      usecase.PingFunc(campaignCache.Ping),
	}, static)

	router := server.InitiateRouter(app.AllowOrigins, app.AnonymousUserID, collector, server.Handlers{
		Campaign: httpHandler.NewCampaignHandler(campaignUsecase),
		Catalog:  httpHandler.NewCatalogHandler(catalogUsecase),
		Dispatch: httpHandler.NewDispatchHandler(dispatchUsecase, configuration.C.Dispatcher.BatchSize),
		Health:   httpHandler.NewHealthHandler(healthUsecase),
		Stream:   postHub.Serve,
	})

	interval := time.Duration(configuration.C.Dispatcher.IntervalSeconds) * time.Second
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				procCtx, cancelProc := context.WithTimeout(ctx, interval)
				if _, err := dispatchUsecase.ProcessDuePosts(procCtx, configuration.C.Dispatcher.BatchSize); err != nil {
					logger.GetLogger().WithField("error", err).Error("Error while dispatching due posts")
				}
				cancelProc()
			}
		}
	})

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled, "dispatchInterval": interval.String()}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	waitErr := g.Wait()
	// the dispatcher has stopped, nothing publishes past this point
	closeAll(shutdownCtx, closers)
	if waitErr != nil {
		logger.GetLogger().WithField("error", waitErr).Error("Server returned an error")
		os.Exit(2)
	}
	logger.GetLogger().Info("Application stopped")
}

// InitiateDatabase opens the campaign store: MSSQL in production or when DB_VENDOR=mssql,
// PostgreSQL otherwise. The schema is ensured for whichever vendor is chosen.
func InitiateDatabase() (*sql.DB, repository.ICampaign, error) {
	env := os.Getenv("ENV")
	if os.Getenv("DB_VENDOR") == "mssql" || env == "production" || env == "prod" {
		mssql, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return nil, nil, err
		}
		if err := persistence.EnsureCampaignSchemaMSSQL(mssql); err != nil {
			_ = mssql.Close()
			return nil, nil, fmt.Errorf("ensure campaign schema: %w", err)
		}
		logger.GetLogger().Info("Campaign store: MSSQL")
		return mssql, persistence.NewCampaignRepositoryMSSQL(mssql), nil
	}

	postgres, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return nil, nil, err
	}
	if err := persistence.EnsureCampaignSchema(postgres); err != nil {
		_ = postgres.Close()
		return nil, nil, fmt.Errorf("ensure campaign schema: %w", err)
	}
	logger.GetLogger().Info("Campaign store: PostgreSQL")
	return postgres, persistence.NewCampaignRepository(postgres), nil
}

func initiateMongo(ctx context.Context) *mongo.Client {
	mongoDb, err := persistence.NewMongoDb(configuration.C.Database.Mongo.URI)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without post audit")
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoDb.Ping(pingCtx, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without post audit")
		_ = mongoDb.Disconnect(context.Background())
		return nil
	}
	logger.GetLogger().Info("MongoDB connected successfully")
	return mongoDb
}

// shutdownFunc releases a client opened at startup
type shutdownFunc struct {
	name  string
	close func(ctx context.Context) error
}

// closeAll runs the shutdown funcs in reverse order of creation and returns how many failed
func closeAll(ctx context.Context, funcs []shutdownFunc) int {
	failed := 0
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i].close(ctx); err != nil {
			failed++
			logger.GetLogger().WithField("error", err).WithField("client", funcs[i].name).Error("Error while closing client")
			continue
		}
		logger.GetLogger().WithField("client", funcs[i].name).Debug("Client closed")
	}
	return failed
}

// initiatePublishers connects the configured event buses. The returned map reports
// disabled buses to the health check; the shutdown funcs flush and close what was opened.
func initiatePublishers(ctx context.Context) ([]repository.IEventPublisher, map[string]string, []shutdownFunc) {
	var publishers []repository.IEventPublisher
	var closers []shutdownFunc
	static := map[string]string{}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - campaign events will not reach PubSub")
		static["pubsub"] = "disabled"
	} else {
		pub := pubsub.NewEventPublisher(pubSubClient, configuration.C.Pubsub.Topic)
		publishers = append(publishers, pub)
		closers = append(closers,
			shutdownFunc{name: "pubsub", close: func(context.Context) error { return pubSubClient.Close() }},
			shutdownFunc{name: "pubsubTopic", close: func(context.Context) error { pub.Close(); return nil }},
		)
		static["pubsub"] = "enabled"
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus")
		static["serviceBus"] = "disabled"
	} else {
		publishers = append(publishers, servicebus.NewEventPublisher(azServiceBusClient, configuration.C.ServiceBus.Queue))
		closers = append(closers, shutdownFunc{name: "serviceBus", close: azServiceBusClient.Close})
		static["serviceBus"] = "enabled"
	}
	return publishers, static, closers
}
