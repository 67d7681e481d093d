package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rcliao/monchatbot/internal/metrics"
	"github.com/rcliao/monchatbot/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat server",
		Long:  "Run the HTTP chat server: POST /ask, GET /health and GET /metrics.",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	logger := newLogger(cfg)

	s := openStore(cfg, logger)
	defer s.Close()

	m := metrics.New()
	router, err := newRouter(cfg, s, m, logger)
	if err != nil {
		exitErr("build router", err)
	}
	m.MemoryEntries.Set(float64(s.Len()))

	srv, err := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		Router:          router,
		Memory:          s,
		Metrics:         m,
		Logger:          logger,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		exitErr("build server", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		exitErr("serve", err)
	}
}
