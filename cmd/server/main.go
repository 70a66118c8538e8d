// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"orgdir/internal/audit"
	"orgdir/internal/crypto"
	jwttoken "orgdir/internal/jwt_token"
	orghandler "orgdir/internal/org/handler"
	orgmodels "orgdir/internal/org/models"
	orgservice "orgdir/internal/org/service"
	"orgdir/internal/platform/config"
	"orgdir/internal/platform/httpserver"
	"orgdir/internal/platform/logger"
	"orgdir/internal/platform/metrics"
	"orgdir/internal/storage"
	httptransport "orgdir/internal/transport/http"
	userhandler "orgdir/internal/user/handler"
	usermodels "orgdir/internal/user/models"
	userservice "orgdir/internal/user/service"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	codec, err := crypto.NewCodec(cfg.AESKey, cfg.AESIV)
	if err != nil {
		log.Error("invalid cipher configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	orgStore := storage.NewLineStore[orgmodels.Organization](cfg.OrganizationsFile, codec)
	userStore := storage.NewLineStore[usermodels.User](cfg.UsersFile, codec)
	auditStore := storage.NewLineStore[audit.Event](cfg.AuditFile, codec)

	trail := audit.NewTrail(64)
	orgSvc := orgservice.New(orgStore, log, m, orgservice.WithAuditTrail(trail))
	userSvc := userservice.New(userStore, log, m, userservice.WithAuditTrail(trail))

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)

	router := httptransport.NewRouter(log, cfg.APIKey,
		orghandler.New(orgSvc, codec, log),
		userhandler.New(userSvc, tokens, codec, log, m),
	)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := audit.NewWorker(auditStore, trail.Events(), log).Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting orgdir", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
