// big5rec 启动人格音乐推荐的 HTTP 服务。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/rushteam/big5rec/engine"
	"github.com/rushteam/big5rec/pkg/logging"
	"github.com/rushteam/big5rec/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		listen     string
		logLevel   string
		logFormat  string
		rulesFile  string
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to YAML config file (env BIG5REC_CONFIG)")
	pflag.StringVar(&listen, "listen", "", "HTTP listen address, overrides server.listen")
	pflag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pflag.StringVar(&logFormat, "log-format", "", "Log format (json, console)")
	pflag.StringVar(&rulesFile, "rules", "", "Personality rules YAML, overrides rules_file")
	pflag.Parse()

	settings, err := engine.LoadSettings(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		settings.Server.Listen = listen
	}
	if logLevel != "" {
		settings.Log.Level = logLevel
	}
	if logFormat != "" {
		settings.Log.Format = logFormat
	}
	if rulesFile != "" {
		settings.RulesFile = rulesFile
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	logging.Init(settings.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := engine.Open(logging.ContextWithNewCorrelationID(ctx), settings)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer eng.Close()

	srv := server.New(eng, settings.Server)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
