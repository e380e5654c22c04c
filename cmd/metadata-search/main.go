package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/foss4g-video/talkmeta/http"
	"github.com/foss4g-video/talkmeta/index"
)

func main() {
	var indexPath string
	var addr string
	var debug bool
	allowedOrigins := make([]string, 0, 1)
	pflag.StringVar(&indexPath, "index-path", "metadata.bleve", "Path to the catalog folder")
	pflag.StringVar(&addr, "http-addr", "127.0.0.1:8080", "Address the HTTP server should listen on for API calls")
	pflag.StringSliceVar(&allowedOrigins, "allowed-origin", []string{"http://localhost:8000"}, "(CORS) allowed hostname for XHRs")
	pflag.BoolVar(&debug, "debug", false, "Enable debug logging")
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if _, err := os.Stat(indexPath); err != nil {
		log.Fatal().Err(err).Msgf("No catalog found at %s. Run schedule-to-metadata with --index-path first", indexPath)
	}

	cat, err := index.Open(indexPath, false)
	if err != nil {
		log.Fatal().Err(err).Msgf("Failed to load catalog on %s", indexPath)
	}
	defer cat.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := http.RunHTTPD(ctx, cat, addr, allowedOrigins); err != nil {
		log.Error().Err(err).Msgf("Failed to start HTTPD on %s", addr)
	}
}
