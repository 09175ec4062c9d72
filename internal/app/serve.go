package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gonzacha/qsd/internal/cli"
	"github.com/gonzacha/qsd/internal/httpapi"
	"github.com/gonzacha/qsd/internal/reader"
	"github.com/gonzacha/qsd/internal/render"
	"github.com/gonzacha/qsd/internal/resolve"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	rt, err := loadRuntime(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := rt.logger

	renderer, err := render.New(rt.catalog)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to parse templates")
		fmt.Fprintf(os.Stderr, "Failed to initialize renderer: %v\n", err)
		return 1
	}

	var logo []byte
	if path := strings.TrimSpace(rt.cfg.LogoFile); path != "" {
		logo, err = os.ReadFile(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("serve failed to read logo")
			fmt.Fprintf(os.Stderr, "Failed to read logo: %v\n", err)
			return 1
		}
	}

	resolver := resolve.New(resolve.Options{
		Timeout:   rt.cfg.ResolveTimeout,
		BatchSize: rt.cfg.ResolveBatchSize,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(httpapi.Deps{
		Pipeline: rt.pipeline,
		Resolver: resolver,
		Renderer: renderer,
	}, logger, httpapi.Options{
		Host:               *host,
		Port:               *port,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    *shutdownTimeout,
		CORSAllowedOrigins: rt.cfg.CORSAllowedOriginsList(),
		PublicBaseURL:      rt.cfg.PublicBaseURL,
		ResolveRateLimit:   rt.cfg.ResolveRateLimit,
		Logo:               logo,
		Reader:             reader.FetchOptions{Timeout: reader.DefaultFetchTimeout},
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
