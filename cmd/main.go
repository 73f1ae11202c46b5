package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kdduha/exam-grader/backend/internal/cache"
	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/handler"
	"github.com/kdduha/exam-grader/backend/internal/llm"
	"github.com/kdduha/exam-grader/backend/internal/logging"
	"github.com/kdduha/exam-grader/backend/internal/service"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"

	_ "github.com/kdduha/exam-grader/backend/docs"
)

// @title Exam Grader API
// @version 1.0
// @description Grades handwritten exam answers with a multimodal language model.
// @BasePath /

func main() {
	app := &cli.App{
		Name:  "exam-grader",
		Usage: "HTTP backend grading handwritten exam answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "Listen port, overrides SERVER_PORT",
				Aliases: []string{"p"},
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("exam-grader failed")
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Server.Port = port
	}

	logger := logging.New(cfg.LogLevel)

	policy, err := service.ResolvePolicy(cfg.Grading)
	if err != nil {
		return err
	}

	dispatcher, err := llm.New(cfg.Model)
	if err != nil {
		return err
	}
	if err := dispatcher.Configured(); err != nil {
		logger.Warn().Err(err).Msg("model credential missing, /grade will fail until it is set")
	}

	gradeService := service.NewGradeService(logger, dispatcher, policy, cfg.Model.Timeout)

	if cfg.CacheEnable {
		redisCache := cache.NewRedisCache(
			cfg.RedisConfig.Addr,
			cfg.RedisConfig.Password,
			cfg.RedisConfig.DB,
			cfg.RedisConfig.TTL,
		)
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("redis ping failed")
		}
		gradeService.SetCacheClient(redisCache)
		logger.Info().Str("addr", cfg.RedisConfig.Addr).Msg("set redis as cache")
	}

	g := handler.NewGradeHandler(gradeService, cfg.Server.MaxBodyBytes)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler.NewRouter(g, cfg.Server.Timeout),
	}

	go func() {
		logger.Info().
			Str("port", cfg.Server.Port).
			Str("provider", dispatcher.Name()).
			Str("model", dispatcher.Model()).
			Str("policy", policy.Name).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
