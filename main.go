package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/budgetplanner/backend/internal/controllers"
	"github.com/budgetplanner/backend/internal/router"
	"github.com/budgetplanner/backend/internal/source"
	"github.com/budgetplanner/backend/internal/storage"
)

func main() {
	// Local overrides for development. Missing file is fine.
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	dbPath, ok := os.LookupEnv("DB_PATH")
	if !ok {
		dbPath = "data/budgets.db"
	}

	store, err := storage.Connect(dbPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer store.Close()

	co := controllers.NewController(store, source.NewDemo(), 0)

	r, teardown, err := router.Router()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()
	router.AttachRoutes(co, store, r.Group("/"))

	addr, ok := os.LookupEnv("LISTEN_ADDRESS")
	if !ok {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msg(err.Error())
		}
	}()

	// On shutdown, stop accepting requests first and then flush all
	// pending saves so no coalesced write is lost.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	co.Shutdown()
}
