package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/page"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-admin-go")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// init db
	dbCfg := database.ConfigFromEnv()
	db, err := database.Open(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	if err := database.Migrate(ctx, db.DB, dbCfg.Driver); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}

	cost, err := strconv.Atoi(getenv("BCRYPT_COST", "12"))
	if err != nil {
		sugar.Fatalf("invalid BCRYPT_COST: %v", err)
	}
	userSvc := user.NewUserService(repo.NewUserRepo(db), user.BcryptHasher{Cost: cost}, sugar)

	sessCfg := session.ConfigFromEnv()
	generated, err := sessCfg.EnsureSecret()
	if err != nil {
		sugar.Fatalf("session secret: %v", err)
	}
	if generated {
		sugar.Warn("SESSION_SECRET is empty; using a random secret, sessions will not survive a restart")
	}

	seeded, err := userSvc.SeedAdmin(ctx, sessCfg.AdminEmail, getenv("ADMIN_PASSWORD", "ykbjfree"))
	if err != nil {
		sugar.Fatalf("seed admin: %v", err)
	}
	if seeded {
		sugar.Infow("seeded administrator account", "email", sessCfg.AdminEmail)
	}

	sessSvc := session.NewService(userSvc, session.NewSigner(sessCfg.Secret, sessCfg.TTL), sessCfg.AdminEmail)

	pages, err := page.NewHandler(sessCfg.AdminEmail, sugar)
	if err != nil {
		sugar.Fatalf("load templates: %v", err)
	}

	ids := utilities.IDGeneratorFromEnv()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := router.RegisterRoutes(router.Deps{
		Logger:    sugar,
		Users:     user.NewHandler(userSvc, sugar),
		Session:   session.NewHandler(sessSvc, sessCfg, sugar, session.NewLoginCounter(reg)),
		Gate:      session.NewGate(sessSvc, sessCfg, sugar),
		Pages:     pages,
		StaticDir: getenv("STATIC_DIR", "templates/sdk"),
		IDs:       ids,
		Metrics:   router.NewMetrics(reg),
		Gatherer:  reg,
	})
	srv := &http.Server{
		Addr:              getenv("HTTP_ADDR", "0.0.0.0:8080"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		sugar.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorf("http server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := multierr.Combine(srv.Shutdown(doneCtx), db.Close()); err != nil {
		sugar.Warnf("shutdown: %v", err)
	}

	sugar.Info("goodbye")
}
