package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/assistance-service/internal/api/http"
	"github.com/spec-kit/assistance-service/internal/api/http/handlers"
	"github.com/spec-kit/assistance-service/internal/auth"
	"github.com/spec-kit/assistance-service/internal/config"
	"github.com/spec-kit/assistance-service/internal/events"
	"github.com/spec-kit/assistance-service/internal/observability"
	"github.com/spec-kit/assistance-service/internal/persistence"
	"github.com/spec-kit/assistance-service/internal/repository"
	"github.com/spec-kit/assistance-service/internal/service"
	"github.com/spec-kit/assistance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	locationCache := persistence.NewLocationCache(redis, cfg.Dispatch.OperatorLocationTTL())

	pool := pg.PoolHandle()
	txManager := repository.NewTxManager(pool)
	requestRepo := repository.NewRequestRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	providerRepo := repository.NewProviderRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:      userRepo,
		TxManager:     txManager,
		LocationCache: locationCache,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:          requestRepo,
		VehicleRepo:          vehicleRepo,
		ProviderRepo:         providerRepo,
		UserRepo:             userRepo,
		TxManager:            txManager,
		Dispatcher:           dispatcher,
		FreeOperatorOnCancel: cfg.Dispatch.FreeOperatorOnCancel,
	})
	dispatchService := service.NewDispatchService(service.DispatchDependencies{
		RequestRepo:  requestRepo,
		VehicleRepo:  vehicleRepo,
		ProviderRepo: providerRepo,
		ResourceRepo: resourceRepo,
		UserRepo:     userRepo,
		TxManager:    txManager,
		Dispatcher:   dispatcher,
	})
	companyService := service.NewCompanyService(companyRepo, planRepo)
	providerService := service.NewProviderService(providerRepo, requestRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, companyRepo)
	resourceService := service.NewResourceService(resourceRepo, providerRepo)
	planService := service.NewPlanService(planRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, userService),
		Requests:       handlers.NewRequestsHandler(requestService, dispatchService),
		Companies:      handlers.NewCompaniesHandler(companyService),
		Providers:      handlers.NewProvidersHandler(providerService),
		Vehicles:       handlers.NewVehiclesHandler(vehicleService),
		Resources:      handlers.NewResourcesHandler(resourceService),
		Plans:          handlers.NewPlansHandler(planService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
