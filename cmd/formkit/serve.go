package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formkit "github.com/goliatone/go-formkit"
	"github.com/goliatone/go-formkit/pkg/formhttp"
)

func (a *app) newServeCmd() *cobra.Command {
	var (
		schemaPath string
		addr       string
		basePath   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a form over HTTP",
		Long: `Serve the form document over HTTP. Every visitor gets a session that
expires after session.ttl of inactivity. Valid submissions are logged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			def, err := a.loadDefinition(ctx, schemaPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			handler, err := a.formHandler(def, basePath)
			if err != nil {
				return err
			}

			router := chi.NewRouter()
			router.Mount(basePath, handler)
			router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(formkit.AssetsFS())))
			if basePath != "/" && basePath != "" {
				router.Get("/", func(w http.ResponseWriter, r *http.Request) {
					http.Redirect(w, r, basePath+"/", http.StatusFound)
				})
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("serving form", zap.String("addr", addr), zap.String("path", basePath))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				a.logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "form document path or URL")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http.addr)")
	cmd.Flags().StringVar(&basePath, "path", "/form", "mount path")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// formHandler builds the HTTP adapter. Valid submissions are logged.
func (a *app) formHandler(def formkit.Definition, basePath string) (*formhttp.Handler, error) {
	if basePath == "" || basePath[0] != '/' {
		return nil, fmt.Errorf("--path must start with /")
	}
	return formhttp.New(def,
		formhttp.WithBasePath(basePath),
		formhttp.WithSessionTTL(a.cfg.Session.TTL),
		formhttp.WithSessionOptions(a.sessionOptions()...),
		formhttp.WithLogger(a.logger),
		formhttp.WithSubmitFunc(func(_ context.Context, values map[string]any) error {
			a.logger.Info("form submitted", zap.Any("values", values))
			return nil
		}),
	)
}
