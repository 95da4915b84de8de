package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-loan-system/internal/config"
	"github.com/iliyamo/library-loan-system/internal/database"
	"github.com/iliyamo/library-loan-system/internal/handler"
	"github.com/iliyamo/library-loan-system/internal/middleware"
	"github.com/iliyamo/library-loan-system/internal/queue"
	"github.com/iliyamo/library-loan-system/internal/repository"
	"github.com/iliyamo/library-loan-system/internal/router"
	"github.com/iliyamo/library-loan-system/internal/sweep"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	titleRepo := repository.NewBookTitleRepo(db)
	copyRepo := repository.NewBookCopyRepo(db)
	loanRepo := repository.NewLoanRepo(db)
	cardRepo := repository.NewCardRepo(db)
	readerRepo := repository.NewReaderRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	staffRepo := repository.NewStaffRepo(db)
	settingRepo := repository.NewSettingRepo(db)

	bookH := handler.NewBookHandler(cfg, titleRepo, copyRepo)
	loanH := handler.NewLoanHandler(db, loanRepo, copyRepo, cardRepo, staffRepo, paymentRepo, settingRepo)
	readerH := handler.NewReaderHandler(db, readerRepo, cardRepo, paymentRepo, settingRepo)
	staffH := handler.NewStaffHandler(staffRepo)
	cronH := handler.NewCronHandler(cfg, loanRepo)

	// Redis is optional: when it is unreachable the response cache and
	// the rate limiter are simply disabled.
	var cache, limiter echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		if cc := config.LoadCacheConfig(); cc.Enabled {
			cache = middleware.NewRedisCache(cc, rdb)
		}
		if rc := config.LoadRateLimitConfig(); rc.Enabled {
			limiter = middleware.NewTokenBucket(rc, rdb)
		}
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCatalog(e, bookH, cfg.JWTSecret, cache)
	router.RegisterLoans(e, loanH, cfg.JWTSecret, limiter)
	router.RegisterReaders(e, readerH, cfg.JWTSecret)
	router.RegisterStaff(e, staffH, cfg.JWTSecret)
	router.RegisterCron(e, cronH)

	// Consumer logs fine and sweep events to the audit log; it keeps
	// reconnecting on its own if the broker drops.
	go func() {
		if err := queue.StartLoanEventsConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweep.Run(ctx, cfg.SweepInterval, loanRepo)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
