package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/config"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/coverage"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/domain"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/handler"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create the database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not touch the network, so ping explicitly
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to reach the database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	// make sure the initial admin account exists
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash the initial admin password", "error", err)
		return
	}
	initialAdmin := &domain.Teacher{
		FirstName:    cfg.InitialAdmin.FirstName,
		LastName:     cfg.InitialAdmin.LastName,
		TaxCode:      cfg.InitialAdmin.TaxCode,
		Email:        cfg.InitialAdmin.Email,
		PasswordHash: string(passwordHash),
		Role:         domain.RoleAdmin,
	}
	if err := repo.CreateTeacher(initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "teachers_tax_code_key":
				// the initial admin is already there, nothing to do
			default:
				logger.Error("failed to create the initial admin", "error", err)
				return
			}
		default:
			logger.Error("failed to create the initial admin", "error", err)
			return
		}
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open a rabbitmq channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"notification_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to declare the notification queue", "error", err)
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	bell, err := coverage.LoadBellSchedule(cfg.School.BellSchedule)
	if err != nil {
		logger.Error("failed to parse the bell schedule", "error", err)
		return
	}

	handler, err := handler.NewHandler(cfg, repo, ch, rdb, bell)
	if err != nil {
		logger.Error("failed to create the handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting the server...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start the server", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down the server...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down the server", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
