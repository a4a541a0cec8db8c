package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/yeremiapane/kafe-cerita-bot/bot"
	"github.com/yeremiapane/kafe-cerita-bot/config"
	"github.com/yeremiapane/kafe-cerita-bot/database"
	"github.com/yeremiapane/kafe-cerita-bot/kds"
	"github.com/yeremiapane/kafe-cerita-bot/middlewares"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/router"
	"github.com/yeremiapane/kafe-cerita-bot/services"
	"github.com/yeremiapane/kafe-cerita-bot/transport"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "kafe-cerita-bot",
		Usage: "bot pemesanan Kafe Cerita dan API admin menu",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "file .env yang dibaca sebelum environment",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "jalankan HTTP API dan bot Telegram",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-telegram", Usage: "hanya jalankan HTTP API"},
				},
				Action: serve,
			},
			{
				Name:  "import-menu",
				Usage: "import katalog dari file menu_data.json",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
				},
				Action: importMenu,
			},
			{
				Name:  "export-menu",
				Usage: "export katalog ke file menu_data.json",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "menu_data.json"},
				},
				Action: exportMenu,
			},
			{
				Name:  "create-admin",
				Usage: "buat akun admin dashboard",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name", Value: "Admin"},
				},
				Action: createAdmin,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Fatal(err)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap membaca konfigurasi, menyiapkan logger, dan membuka database yang sudah dimigrasi
func bootstrap(c *cli.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	utils.InitLoggerWith(level, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		utils.InfoLogger.Warn("JWT_SECRET is not set, using the built-in development secret")
	}
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	if err := services.NewCatalogService(db).SeedDefaults(); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func serve(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog := services.NewCatalogService(db)
	orders := services.NewOrderLogService(db)
	users := services.NewUserService(db)

	if cfg.MenuSeedFile != "" {
		if err := seedMenu(catalog, cfg.MenuSeedFile); err != nil {
			return err
		}
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, created, err := users.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		} else if created {
			utils.InfoLogger.Printf("Admin account %s created", cfg.AdminEmail)
		}
	}

	hub := kds.NewHub(utils.InfoLogger)
	store := bot.NewMemorySessionStore(bot.WithTTL(cfg.SessionTTL))
	conversation := bot.NewConversation(store, catalog,
		bot.WithCafeName(cfg.CafeName),
		bot.WithLogger(utils.InfoLogger),
		bot.WithOrderSink(orders),
		bot.WithOrderSink(hub),
	)

	activeSessions := bot.NewActiveSessionsCollector(store)
	prometheus.MustRegister(activeSessions)
	defer prometheus.Unregister(activeSessions)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := router.SetupRouter(router.Deps{
		DB:                db,
		Conversation:      conversation,
		Catalog:           catalog,
		Orders:            orders,
		Users:             users,
		Hub:               hub,
		CORSOrigin:        cfg.CORSOrigin,
		ChatRatePerMinute: cfg.ChatRatePerMinute,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	if cfg.TelegramToken != "" && !c.Bool("no-telegram") {
		limiter := middlewares.NewKeyedRateLimiter(cfg.ChatRatePerMinute, cfg.ChatRatePerMinute)
		tg, err := transport.NewTelegramBot(cfg.TelegramToken, cfg.TelegramDebug, conversation, limiter, utils.InfoLogger)
		if err != nil {
			return fmt.Errorf("failed to start Telegram bot: %w", err)
		}
		go func() {
			if err := tg.Run(ctx); err != nil {
				errs <- err
			}
		}()
	} else {
		utils.InfoLogger.Warn("Telegram bot disabled, only the HTTP chat endpoint is available")
	}

	select {
	case <-ctx.Done():
		utils.InfoLogger.Println("Shutting down...")
	case err := <-errs:
		utils.ErrorLogger.Printf("Server error: %v", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedMenu mengisi katalog dari file hanya bila katalog masih kosong
func seedMenu(catalog *services.CatalogService, path string) error {
	items, err := catalog.GetAllItems()
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open MENU_SEED_FILE: %w", err)
	}
	defer f.Close()

	result, err := catalog.ImportJSON(f)
	if err != nil {
		return err
	}
	utils.InfoLogger.Printf("Menu seeded from %s: %d items", path, result.Items)
	return nil
}

func importMenu(c *cli.Context) error {
	_, db, err := bootstrap(c)
	if err != nil {
		return err
	}

	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := services.NewCatalogService(db).ImportJSON(f)
	if err != nil {
		return err
	}
	utils.InfoLogger.Printf("Imported %d categories, %d items (info text: %t)", result.Categories, result.Items, result.InfoText)
	return nil
}

func exportMenu(c *cli.Context) error {
	_, db, err := bootstrap(c)
	if err != nil {
		return err
	}

	f, err := os.Create(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := services.NewCatalogService(db).ExportJSON(f); err != nil {
		return err
	}
	utils.InfoLogger.Printf("Catalog exported to %s", c.String("file"))
	return nil
}

func createAdmin(c *cli.Context) error {
	_, db, err := bootstrap(c)
	if err != nil {
		return err
	}

	user, err := services.NewUserService(db).CreateUser(c.String("name"), c.String("email"), c.String("password"), models.RoleAdmin)
	if err != nil {
		return err
	}
	utils.InfoLogger.Printf("Admin %s created (id=%d)", user.Email, user.ID)
	return nil
}
