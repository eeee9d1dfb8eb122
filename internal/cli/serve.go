package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simone-trubian/medscribe/internal/handlers"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			svc, err := a.noteService()
			if err != nil {
				return err
			}
			router := handlers.NewRouter(a.httpHandler(svc), a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("provider configured",
				"kind", a.cfg.Provider.Kind,
				"model", a.cfg.Provider.Model,
				"template", a.cfg.Prompt.Version,
				"accept_pdf", a.cfg.Intake.AcceptPDF,
			)

			s := a.cfg.Server
			return handlers.Serve(ctx, handlers.ServerConfig{
				Addr:              s.Addr,
				ReadHeaderTimeout: s.ReadHeaderTimeout.Duration,
				ReadTimeout:       s.ReadTimeout.Duration,
				WriteTimeout:      s.WriteTimeout.Duration,
				IdleTimeout:       s.IdleTimeout.Duration,
			}, router, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
