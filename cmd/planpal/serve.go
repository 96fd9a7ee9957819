package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/harunnryd/planpal/internal/config"
	"github.com/harunnryd/planpal/internal/httpapi"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, nil)
		if err != nil {
			return err
		}

		var metricsHandler http.Handler
		if a.recorder != nil {
			metricsHandler = a.recorder.Handler()
		}

		srv, err := httpapi.NewServer(&cfg.Server, a.agent, a.bearerGateway, metricsHandler)
		if err != nil {
			return err
		}

		signals := NewSignalHandler(cmd.Context())
		signals.Start()
		defer signals.Stop()

		srv.Start()
		slog.Info("PlanPal ready", "port", cfg.Server.Port, "model", cfg.Models.Default, "timezone", a.loc.String())

		<-signals.Context().Done()
		return srv.Stop(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("server.port", config.DefaultServerPort, "server port")
}
