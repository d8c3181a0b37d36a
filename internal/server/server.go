package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	errInvalidBody = errors.New("body must be a JSON object or array of rows")
	errEmptyBody   = errors.New("body has no rows")
)

// Options configures Run.
type Options struct {
	Addr          string
	APIKey        string
	RedisAddr     string
	RedisPassword string
}

const shutdownTimeout = 5 * time.Second

// Run serves the REST surface until ctx is cancelled. Documents live in
// redis when RedisAddr is set, otherwise in memory.
func Run(ctx context.Context, opts Options) error {
	gin.SetMode(gin.ReleaseMode)

	var backend Backend = NewMemoryBackend()
	if opts.RedisAddr != "" {
		rb, err := NewRedisBackend(ctx, opts.RedisAddr, opts.RedisPassword)
		if err != nil {
			return err
		}
		defer rb.Close()
		backend = rb
		log.Info().Str("redis", opts.RedisAddr).Msg("using redis backend")
	} else {
		log.Warn().Msg("using in-memory backend; data is lost on exit")
	}
	if opts.APIKey == "" {
		log.Warn().Msg("no api key configured; requests are not authenticated")
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(backend, opts.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", opts.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
