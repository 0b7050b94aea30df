package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callbridge/internal/auth"
	"callbridge/internal/config"
	"callbridge/internal/httpapi"
	"callbridge/internal/invite"
	"callbridge/internal/push"
	"callbridge/internal/rtctoken"
	"callbridge/internal/store"
	"callbridge/pkg/logger"
	"callbridge/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional env-file for local runs; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, cfg.App.Debug)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	mongoClient, err := utils.OpenMongo(rootCtx, cfg.Mongo.URI, 5*time.Second)
	if err != nil {
		log.Error("mongo init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	docs := store.NewMongo(mongoClient.Database(cfg.Mongo.Database))

	var voipSender push.Sender
	if cfg.APNS.Enabled() {
		s, err := push.NewVoIPSender(push.APNSKey{
			KeyID:      cfg.APNS.KeyID,
			TeamID:     cfg.APNS.TeamID,
			PrivateKey: []byte(cfg.APNS.PrivateKey),
			Topic:      cfg.APNS.Topic,
			Sandbox:    cfg.APNS.Sandbox,
		})
		if err != nil {
			log.Error("apns init failed", "err", err)
			os.Exit(1)
		}
		voipSender = s
	} else {
		log.Warn("apns not configured; voip pushes disabled")
	}

	var fcmSender push.Sender
	if cfg.FCM.Enabled() {
		s, err := push.NewFCMSender(rootCtx, []byte(cfg.FCM.CredentialsJSON))
		if err != nil {
			log.Error("fcm init failed", "err", err)
			os.Exit(1)
		}
		fcmSender = s
	} else {
		log.Warn("fcm not configured; general pushes disabled")
	}

	invites := invite.NewService(
		docs,
		docs,
		push.NewDispatcher(voipSender, fcmSender, log),
		cfg.Invite.LookupField,
	)

	var tokens rtctoken.Builder
	if cfg.Agora.Enabled() {
		b, err := rtctoken.NewAgoraBuilder(cfg.Agora.AppID, cfg.Agora.AppCert)
		if err != nil {
			log.Error("rtc token init failed", "err", err)
			os.Exit(1)
		}
		tokens = b
	} else {
		log.Warn("agora not configured; rtc token endpoint disabled")
	}

	var authMW gin.HandlerFunc
	if cfg.Auth.Enabled() {
		manager, err := auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
		authMW = auth.RequireToken(manager)
	}

	var capMW gin.HandlerFunc
	if cfg.Redis.Enabled() && cfg.Invite.Cap > 0 {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		capMW = httpapi.InviteCap(rdb, cfg.Invite.Cap, cfg.Invite.CapTTL)
	}

	h := httpapi.Handlers{
		Invites:     invites,
		Tokens:      tokens,
		TokenExpiry: cfg.Agora.TokenExpiry,
	}

	r := gin.New()
	registerRoutes(r, cfg, log, h, authMW, capMW)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
