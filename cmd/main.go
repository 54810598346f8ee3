package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/chat-service/config"
	"github.com/cwrk-planet/chat-service/internal/pg"
	"github.com/cwrk-planet/chat-service/internal/postgres"
	"github.com/cwrk-planet/chat-service/internal/pubsub"
	"github.com/cwrk-planet/chat-service/internal/security"
	"github.com/cwrk-planet/chat-service/internal/service"
	httpx "github.com/cwrk-planet/chat-service/internal/transport/http"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"
	"github.com/cwrk-planet/logger/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := pg.NewPool(ctx, pg.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- repos ---
	userRepo := postgres.NewUserRepository(pool)
	roomRepo := postgres.NewRoomRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	replyRepo := postgres.NewReplyRepository(pool)

	// --- fan-out bus ---
	bus := pubsub.NewBus()

	// --- services ---
	userSvc := service.NewUserService(userRepo)
	roomSvc := service.NewRoomService(roomRepo)
	roomSvc.SetPageSize(cfg.Chat.RoomsPageSize)
	memberSvc := service.NewMemberService(roomRepo, membershipRepo)
	messageSvc := service.NewMessageService(messageRepo, replyRepo, userRepo, bus)

	// --- token verifier (опционально) ---
	var verifier *security.TokenVerifier
	if cfg.Auth.PublicKeyPath != "" {
		pub, err := security.LoadRSAPublicKeyFromPEM(cfg.Auth.PublicKeyPath)
		if err != nil {
			log.Fatalf("load jwt public key: %v", err)
		}
		verifier = security.NewTokenVerifier(pub, cfg.Auth.Issuer, cfg.ClockSkewDuration())
	}

	// --- WS Server ---
	wsServer := ws.NewServer(bus, roomSvc, memberSvc, messageSvc)
	wsServer.SetPingInterval(cfg.WSPingInterval())
	wsServer.SetVerifier(verifier)

	// --- HTTP ---
	handler := httpx.NewHandler(userSvc, roomSvc, memberSvc, messageSvc)
	router := httpx.NewRouter(handler, wsServer, httpx.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Verifier:       verifier,
	})
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
