package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docweave/docweave/internal/api"
	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	settings := config.LoadSettings()

	root := &cobra.Command{
		Use:           "docweave",
		Short:         "Markup transformation pipeline for document trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildCmd(log, settings), serveCmd(log, settings))

	if err := root.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildCmd(log *slog.Logger, settings config.Settings) *cobra.Command {
	var (
		input   string
		output  string
		format  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a source directory into a rendered site",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := pipeline.NewTransformer(log, workers, format)
			outputs, err := tr.Build(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("build %s: %w", input, err)
			}
			if err := pipeline.WriteSite(outputs, output); err != nil {
				return err
			}
			log.Info("site written", "pages", len(outputs), "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "source directory")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&format, "format", settings.Format, "output format (html, ast)")
	cmd.Flags().IntVar(&workers, "workers", settings.WorkerCount, "parallel document workers")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func serveCmd(log *slog.Logger, settings config.Settings) *cobra.Command {
	var (
		input   string
		addr    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview of a source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := pipeline.NewTransformer(log, workers, "html")
			srv := api.NewServer(tr, input, log)
			if err := srv.Rebuild(cmd.Context()); err != nil {
				return fmt.Errorf("initial build of %s: %w", input, err)
			}

			httpServer := &http.Server{
				Addr:         addr,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("serving preview", "addr", addr, "source", input)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "source directory")
	cmd.Flags().StringVar(&addr, "addr", settings.Addr, "listen address")
	cmd.Flags().IntVar(&workers, "workers", settings.WorkerCount, "parallel document workers")
	cmd.MarkFlagRequired("input")
	return cmd
}
