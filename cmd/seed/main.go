package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/scuolanet-dev/substitution-manager/backend/internal/config"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/coverage"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/repository"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/seed"
	"github.com/scuolanet-dev/substitution-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation (1: insert random teachers, 2: seed subjects and classes, 3: seed timetables, 4: seed absences)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
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

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("the number of teachers must be positive")
			return
		}
		cnt := 0
		for i := 0; i < n; i++ {
			teacher, err := utils.GenerateRandomTeacher(cfg.Seed.Teacher.Password, cfg.Email.TeacherDomain)
			if err != nil {
				slog.Error("failed to generate a random teacher", slog.String("error", err.Error()))
				continue
			}
			teacher.RecoverableHours = int32(rand.Intn(9))

			if err := repo.CreateTeacher(teacher); err != nil {
				slog.Error("failed to insert teacher", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		slog.Info("teachers inserted", slog.Int("count", cnt))
	case 2:
		seed.SeedCatalog(repo)
	case 3:
		bell, err := coverage.LoadBellSchedule(cfg.School.BellSchedule)
		if err != nil {
			slog.Error("failed to parse the bell schedule", slog.String("error", err.Error()))
			return
		}
		seed.SeedTimetables(repo, bell)
	case 4:
		if n <= 0 {
			slog.Error("the number of absences must be positive")
			return
		}
		seed.SeedAbsences(repo, n)
	default:
		slog.Error("unknown operation")
	}
}
