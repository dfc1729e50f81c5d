package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/tastetab/internal/bootstrap"
	"github.com/example/tastetab/internal/config"
	"github.com/example/tastetab/internal/database"
	"github.com/example/tastetab/internal/routes"
	"github.com/example/tastetab/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := bootstrap.OpenStore(connectCtx, cfg.DatabaseURL, cfg.LogLevel)
	cancel()
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	gateway := services.NewRazorpayClient(services.RazorpayConfig{
		BaseURL:   cfg.RazorpayBaseURL,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
	})
	if !gateway.Enabled() {
		slog.Warn("razorpay keys not configured, payment endpoints will answer 503")
	}

	app := routes.NewApp(routes.Deps{
		Config: cfg,
		Store:  st,
		Mailer: services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			FromName: cfg.MailFromName,
		}),
		Gateway:   gateway,
		Notifier:  services.NewTelegramService("", cfg.TelegramBotToken, cfg.TelegramAdminChat),
		AccessLog: os.Stdout,
	})

	go func() {
		slog.Info("starting server", "port", cfg.AppPort, "database", database.DetectKind(cfg.DatabaseURL))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			slog.Error("fiber.Listen error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown", "error", err)
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelClose()
	if err := st.Close(closeCtx); err != nil {
		slog.Error("close store", "error", err)
	}
}
