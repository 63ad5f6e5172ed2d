package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bairigao/video-transcoding/internal/adapter/converter/ffmpeg"
	httpadapter "github.com/bairigao/video-transcoding/internal/adapter/http"
	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
	"github.com/bairigao/video-transcoding/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		if err := cfg.RequireSecret(); err != nil {
			return err
		}

		for _, dir := range []string{cfg.UploadsDir, cfg.TranscodedDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		driver := ffmpeg.New(ffmpeg.Options{FFmpegPath: cfg.FFmpeg.Path, FFprobePath: cfg.FFmpeg.ProbePath})
		transcodes := service.NewTranscodeService(store, store.Videos(), driver, service.TranscodeConfig{
			AllowedFormats: cfg.Formats(),
			UploadsDir:     cfg.UploadsDir,
			TranscodedDir:  cfg.TranscodedDir,
		})
		videos := service.NewVideoService(store.Videos(), cfg.UploadsDir)
		auth := service.NewAuthService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

		if _, err := transcodes.RecoverInterrupted(ctx); err != nil {
			return err
		}

		server := httpadapter.NewServer(auth, transcodes, videos, httpadapter.Config{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxUploadBytes: int64(cfg.MaxUploadSizeMB) << 20,
			BehindProxy:    cfg.BehindProxy,
		})
		go server.RunMaintenance(ctx)

		addr := fmt.Sprintf(":%d", cfg.Port)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      10 * time.Minute,
			IdleTimeout:       120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info.Printf("server listening on %s (db=%s)", addr, cfg.Database.Driver)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info.Printf("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}
		if err := transcodes.Wait(shutdownCtx); err != nil {
			logger.Warn.Printf("conversions still running at exit; they will be marked interrupted on next start")
		}

		logger.Info.Printf("shutdown complete")
		return nil
	},
}
