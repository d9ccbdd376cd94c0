package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-room-manager/internal/config"
	"github.com/iliyamo/cinema-room-manager/internal/database"
	"github.com/iliyamo/cinema-room-manager/internal/handler"
	"github.com/iliyamo/cinema-room-manager/internal/middleware"
	"github.com/iliyamo/cinema-room-manager/internal/model"
	"github.com/iliyamo/cinema-room-manager/internal/queue"
	"github.com/iliyamo/cinema-room-manager/internal/repository"
	"github.com/iliyamo/cinema-room-manager/internal/router"
	"github.com/iliyamo/cinema-room-manager/internal/service"
	"github.com/iliyamo/cinema-room-manager/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	if err := seedDefaultAdmin(ctx, userRepo, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	roomService := service.NewRoomService(roomRepo, reservationRepo, queue.PublishRoomUpdated)
	bookingService := service.NewBookingService(reservationRepo)

	authHandler := handler.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost)
	roomHandler := handler.NewRoomHandler(roomService)
	reservationHandler := handler.NewReservationHandler(bookingService)

	// The consumer keeps its own reconnect loop; it never brings the
	// server down.
	go func() {
		if err := queue.StartRoomConsumer(); err != nil {
			log.Printf("room-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterRooms(e, roomHandler, cfg.JWTSecret)
	router.RegisterReservations(e, reservationHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedDefaultAdmin creates the configured admin account when it does
// not exist yet, so a fresh deployment has someone able to manage
// rooms. Skipped when ADMIN_EMAIL/ADMIN_PASSWORD are unset.
func seedDefaultAdmin(ctx context.Context, users *repository.UserRepo, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := &model.User{Email: cfg.AdminEmail, PasswordHash: hash, Role: model.RoleAdmin}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Printf("seeded default admin %s", cfg.AdminEmail)
	return nil
}
