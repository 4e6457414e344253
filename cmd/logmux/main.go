package main

import (
	"os"
	"time"

	"github.com/lixenwraith/log"

	"github.com/logmux/logmux-core/api"
	"github.com/logmux/logmux-core/connector"
	"github.com/logmux/logmux-core/service"
)

func main() {
	logger := log.NewLogger()
	if err := logger.ApplyConfigString("disable_file=true", "enable_console=true"); err != nil {
		os.Exit(1)
	}
	if err := logger.Start(); err != nil {
		os.Exit(1)
	}
	defer logger.Shutdown(2 * time.Second)

	cfg, err := loadConfig(os.Getenv("LOGMUX_CONFIG"))
	if err != nil {
		logger.Error("msg", "Failed to load config", "error", err)
		os.Exit(1)
	}

	reg := connector.DefaultRegistry()
	multi, err := connector.NewMulti(reg, cfg.multiConfig())
	if err != nil {
		logger.Error("msg", "Failed to build connector fan-out", "error", err)
		os.Exit(1)
	}
	// Swallowed fan-out write failures surface only here.
	multi.WithFailureHook(func(connectorType string, err error) {
		logger.Warn("msg", "Log sink write failed",
			"connector", connectorType,
			"error", err)
	})

	srv := api.NewServer(service.New(multi))

	addr := os.Getenv("LOGMUX_LISTEN")
	if addr == "" {
		addr = cfg.Listen
	}

	logger.Info("msg", "logmux core api listening",
		"addr", addr,
		"connectors", len(cfg.Connectors))
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Error("msg", "Server exited", "error", err)
		logger.Shutdown(2 * time.Second)
		os.Exit(1)
	}
}
