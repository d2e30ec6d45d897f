package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/config"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/db"
	apihttp "github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/http"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/metrics"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/repository"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	metrics.Register()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	criteriaRepo := repository.NewPgCriteriaRepository(pool)
	formRepo := repository.NewPgFormRepository(pool)
	submissionRepo := repository.NewPgSubmissionRepository(pool)
	matchRepo := repository.NewPgMatchRepository(pool)
	var personalityRepo repository.PersonalityRepository = repository.NewPgPersonalityRepository(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, profile cache disabled", zap.Error(err))
		} else {
			personalityRepo = repository.NewCachedPersonalityRepository(personalityRepo, redisClient, cfg.ProfileCacheTTL, logger)
		}
		cancel()
		defer redisClient.Close()
	}

	matchSvc := service.NewMatchService(criteriaRepo, formRepo, submissionRepo, personalityRepo, matchRepo, logger, service.MatchOptions{
		TopN:              cfg.MatchTopN,
		Workers:           cfg.MatchWorkers,
		FieldWeight:       cfg.MatchFieldWeight,
		PersonalityWeight: cfg.MatchPersonalityWeight,
	})
	criteriaSvc := service.NewCriteriaService(criteriaRepo, formRepo, logger)

	matchHandler := apihttp.NewMatchHandler(logger, matchSvc)
	criteriaHandler := apihttp.NewCriteriaHandler(logger, criteriaSvc)
	router := apihttp.NewRouter(logger, matchHandler, criteriaHandler, func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
