package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-carpet-shop/internal/config"
	"go-carpet-shop/internal/handler"
	"go-carpet-shop/internal/metrics"
	"go-carpet-shop/internal/middleware"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/internal/service"
	"go-carpet-shop/internal/ws"
	"go-carpet-shop/pkg/database"
	"go-carpet-shop/pkg/jwt"
	"go-carpet-shop/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	configPath string
	envFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "carpet-shop",
		Short:        "Carpet shop API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envFile)
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Pretty)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "path to a dotenv file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// 1. Setup Database
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	// Schema is managed by AutoMigrate; there is no separate migration tool
	if err := db.AutoMigrate(model.All()...); err != nil {
		return err
	}

	// 2. Seed permissions, default groups and the first superuser
	userRepo := repository.NewUserRepo(db)
	groupService := service.NewGroupService(repository.NewGroupRepo(db), repository.NewPermissionRepo(db))
	if err := groupService.Seed(); err != nil {
		return err
	}
	addressServices := service.NewAddressServices(db)
	userService := service.NewUserService(db, userRepo, addressServices)
	if cfg.Admin.Email != "" {
		created, err := userService.EnsureSuperuser(cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.Admin.Email).Msg("Superuser created")
		}
	}

	// 3. Setup WebSocket Hub
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := service.NewAuthService(userRepo, tokens)

	app := newApp(db, hub, authService, userService, groupService, addressServices)

	// 5. Serve until the context is cancelled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")
		return app.Shutdown()
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return err
	}
	log.Info().Msg("Server exited")
	return nil
}

func newApp(db *gorm.DB, hub *ws.Hub, authService service.AuthService, userService service.UserService,
	groupService service.GroupService, addressServices *service.AddressServices) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Carpet Shop v1.0",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())

	handler.MountSystem(app, db, hub)

	api := app.Group("/api/v1")
	handler.Mount(api, middleware.RequireAuth(authService),
		handler.NewAuthHandler(authService, userService),
		handler.NewUserHandler(userService),
		handler.NewGroupHandler(groupService),
		handler.NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepo(db))),
		handler.NewAddressModule(addressServices),
		handler.NewInventoryModule(service.NewInventoryService(db, hub)),
		handler.NewProductModule(service.NewProductServices(db, hub)),
		handler.NewSupplyModule(service.NewSupplyServices(db, addressServices, hub)),
		handler.NewSaleModule(service.NewSaleServices(db)),
		handler.NewCartModule(service.NewCartServices(db)),
	)
	return app
}
