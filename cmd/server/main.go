package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudclip/auth-service/auth"
	"github.com/cloudclip/auth-service/internal/config"
	"github.com/cloudclip/auth-service/server"
	"github.com/cloudclip/auth-service/throttle"
	"github.com/cloudclip/auth-service/throttle/redisstore"
	"github.com/cloudclip/auth-service/token"
	"github.com/cloudclip/auth-service/token/guard"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	authService, err := buildAuthService(c)
	if err != nil {
		return fmt.Errorf("buildAuthService: %w", err)
	}

	handler, err := server.New(c, authService)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildAuthService(c config.Config) (*auth.Service, error) {
	secret := c.GetAccessPassword()
	if secret != "" && c.GetJWTSecret() == "" {
		return nil, errors.New("JWT_SECRET is required when ACCESS_PASSWORD is set")
	}
	if secret == "" {
		log.Warn().Msg("No access password configured, running in open mode")
	}

	deps := auth.Deps{
		Codec:    token.NewCodec(token.NewHMACSigner(c.GetJWTSecret())),
		Guard:    guard.New(c.GetCSRFSecret()),
		Throttle: buildThrottle(c),
	}

	return auth.NewService(secret, deps,
		auth.WithBearerTTL(c.GetBearerTokenTTL()),
		auth.WithGuardMaxAge(c.GetCSRFTokenMaxAge()),
	)
}

func buildThrottle(c config.Config) *throttle.Throttle {
	opts := throttle.Options{
		MaxAttempts:   c.GetMaxLoginAttempts(),
		Window:        c.GetLoginAttemptWindow(),
		BlockDuration: c.GetLoginBlockDuration(),
	}

	addr := c.GetRedisAddr()
	if addr == "" {
		log.Warn().Msg("No attempt store configured, login throttling disabled")
		return throttle.New(nil, opts)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
	})
	log.Info().Str("addr", addr).Msg("Login throttle backed by redis")
	return throttle.New(redisstore.New(client), opts)
}

func configureLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
