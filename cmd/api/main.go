package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "lendpeer/internal/adapter/http"
	"lendpeer/internal/adapter/middleware"
	"lendpeer/internal/adapter/notify"
	"lendpeer/internal/adapter/repository/mysql"
	"lendpeer/internal/config"
	"lendpeer/internal/domain/event"
	"lendpeer/internal/infrastructure/cache"
	"lendpeer/internal/infrastructure/db"
	usecase "lendpeer/internal/usecase/agreement"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	var events event.Dispatcher = notify.NewRedisPublisher(rdb, cfg.NotifyChannel)

	agreements := mysql.NewAgreementRepository(gdb)
	txs := mysql.NewTransactionRepository(gdb)
	u := usecase.NewUsecase(agreements, txs, mysql.NewGormUoW(gdb), events, usecase.Config{
		GraceDays:        cfg.GraceDays,
		OverpayTolerance: cfg.OverpayTolerance,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	e.Validator = httpadp.NewValidator()

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
	httpadp.RegisterRoutes(e, httpadp.NewHandler(), httpadp.NewAgreementHandler(u), idemp)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
