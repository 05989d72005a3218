package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/yubin-dev/roomescape/internal/clock"
	"github.com/yubin-dev/roomescape/internal/config"
	"github.com/yubin-dev/roomescape/internal/database"
	"github.com/yubin-dev/roomescape/internal/handler"
	"github.com/yubin-dev/roomescape/internal/middleware"
	"github.com/yubin-dev/roomescape/internal/queue"
	"github.com/yubin-dev/roomescape/internal/repository"
	"github.com/yubin-dev/roomescape/internal/router"
	"github.com/yubin-dev/roomescape/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	members := repository.NewMemberRepo(db)
	tokens := repository.NewTokenRepo(db)
	themes := repository.NewThemeRepo(db)
	timeSlots := repository.NewTimeSlotRepo(db)
	reservations := repository.NewReservationRepo(db)

	clk := clock.System{}
	reservationSvc := service.NewReservationService(members, timeSlots, themes, reservations, clk)
	catalogSvc := service.NewCatalogService(themes, timeSlots, reservations, clk)

	authH := handler.NewAuthHandler(cfg, members, tokens)
	reservationH := handler.NewReservationHandler(reservationSvc)
	adminReservationH := handler.NewAdminReservationHandler(reservationSvc)
	themeH := handler.NewThemeHandler(catalogSvc)
	timeSlotH := handler.NewTimeSlotHandler(catalogSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, themeH, timeSlotH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterMember(e, reservationH, cfg.JWTSecret)
	router.RegisterAdmin(e, authH, adminReservationH, themeH, timeSlotH, cfg.JWTSecret)

	go queue.StartReservationConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
