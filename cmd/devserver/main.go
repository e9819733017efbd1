package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/condomais/appcore/internal/config"
	"github.com/condomais/appcore/internal/devserver"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("devserver encerrado com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.LoadDevServer()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	server, err := devserver.NewServer(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		return fmt.Errorf("devserver: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("stub da API de identidade ouvindo em :%d", cfg.Port)
		for _, conta := range devserver.ContasSemente() {
			log.Info().Str("login", conta.Login).Str("senha", conta.Senha).Msg("conta semente")
		}
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
