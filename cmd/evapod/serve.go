package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evapod/internal/adapters/http/middleware"
	"evapod/internal/adapters/http/routes"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/config"
	"evapod/internal/core/services"
	"evapod/internal/pkg/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		if seedOnStart {
			if err := config.NewSeeder(db, cfg.Seed, log).Run(cmd.Context()); err != nil {
				log.Warn("seeding failed", zap.Error(err))
			}
		}

		otpService := services.NewOTPService(time.Duration(cfg.Auth.OTPMinutes) * time.Minute)

		// Maintenance jobs: session/token purge and OTP sweep
		cronService := services.NewCronService(
			repositories.NewSessionRepository(db),
			repositories.NewUserTokenRepository(db),
			otpService,
			log,
		)
		if err := cronService.Start(); err != nil {
			return fmt.Errorf("failed to start cron: %w", err)
		}
		defer cronService.Stop()

		// Create Fiber app
		app := fiber.New(fiber.Config{
			AppName:      cfg.SiteName + " API v1.0",
			ErrorHandler: middleware.CustomErrorHandler,
		})

		// Setup middlewares
		middleware.Setup(app, cfg, log)

		// Setup routes
		routes.Setup(app, routes.Dependencies{
			DB:     db,
			Config: cfg,
			Logger: log,
			Mailer: newMailer(),
			OTP:    otpService,
		})

		// Graceful shutdown
		go gracefulShutdown(app)

		log.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "run the admin seeder before serving")
}

// newMailer sends through SMTP when a host is configured, otherwise logs
func newMailer() mailer.Mailer {
	if cfg.SMTP.Host == "" {
		log.Warn("SMTP_HOST is not set, emails will be logged instead of sent")
		return mailer.NewLogMailer(log)
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
