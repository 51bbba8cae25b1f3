package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"vietvisa/config"
	"vietvisa/internal/database"
	"vietvisa/internal/router"
	"vietvisa/internal/ws"
	"vietvisa/pkg/cloudinary"
	"vietvisa/pkg/logger"
	"vietvisa/pkg/mailer"
	"vietvisa/pkg/messaging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	database.SeedAdmin(db, cfg.Admin.Email, cfg.Admin.Password)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatal("cloudinary init failed", zap.Error(err))
	}

	sc := &stripeclient.API{}
	sc.Init(cfg.Stripe.SecretKey, nil)

	deps := router.Deps{
		DB:      db,
		Cloud:   cloud,
		Twilio:  messaging.NewTwilioClient(&cfg.Twilio),
		Mail:    mailer.NewResendMailer(&cfg.Resend),
		Intents: sc.PaymentIntents,
		Hub:     ws.NewHub(),
		Log:     log,
	}
	engine := router.Setup(cfg, deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
