package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shanshu/mapbridge/internal/bridge"
	"github.com/shanshu/mapbridge/internal/config"
	"github.com/shanshu/mapbridge/internal/database"
	"github.com/shanshu/mapbridge/internal/imageloader"
	"github.com/shanshu/mapbridge/internal/logging"
	"github.com/shanshu/mapbridge/internal/otel"
	"github.com/shanshu/mapbridge/internal/search"
	"github.com/shanshu/mapbridge/internal/search/amapweb"
	"github.com/shanshu/mapbridge/internal/searchcache"
	"github.com/shanshu/mapbridge/internal/surface/memsurface"
	"github.com/shanshu/mapbridge/pkg/hostapi"
)

const version = "1.0.0"

var (
	logger       zerolog.Logger
	sessionStart = time.Now()
)

func main() {
	if err := config.Load("."); err != nil {
		fmt.Println("No config file loaded, using defaults:", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		panic(fmt.Errorf("failed to create logs dir: %w", err))
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, "mapbridge", sessionStart))
	if err != nil {
		panic(fmt.Errorf("failed to create log file: %w", err))
	}
	defer logFile.Close()

	opts := logging.Options{
		Level: config.GetString("logLevel"),
		File:  logFile,
	}
	if config.GetBool("graylog.enabled") {
		opts.GraylogAddress = config.GetString("graylog.address")
	}
	logger, err = logging.New(opts)
	if err != nil {
		panic(fmt.Errorf("failed to set up logging: %w", err))
	}

	otelProvider, err := otel.New(otel.Config{
		Enabled:        config.GetBool("otel.enabled"),
		ServiceName:    config.GetString("otel.serviceName"),
		ExportInterval: config.GetDuration("otel.exportInterval"),
		MetricWriter:   logFile,
	})
	if err != nil {
		panic(fmt.Errorf("failed to set up otel: %w", err))
	}
	defer otelProvider.Shutdown(context.Background())

	host, surf, cache := buildHost()

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return
	}

	switch strings.ToLower(args[0]) {
	case "geocode":
		runGeocode(host, args[1:])
	case "tips":
		runInputTips(host, args[1:])
	case "route":
		runRoute(host, args[1:])
	case "demo":
		runDemo(host, surf, cache)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("mapbridge", version)
	fmt.Println("usage:")
	fmt.Println("  mapbridge geocode <address> [city]")
	fmt.Println("  mapbridge tips <keywords> [city]")
	fmt.Println("  mapbridge route <driving|walking|riding> <lat,lon> <lat,lon>")
	fmt.Println("  mapbridge demo")
}

// buildHost wires the full stack: image loader, vendor search client with
// the optional persistent result cache, an in-memory surface and the host
// API on top.
func buildHost() (*hostapi.Host, *memsurface.Surface, *imageloader.LRUCache) {
	cache := imageloader.NewLRUCache(config.GetInt64("imageCache.maxBytes"))
	loader := imageloader.New(
		cache,
		imageloader.NewClient(config.GetDuration("imageLoader.httpTimeout")),
		logger,
	)

	client := amapweb.New(amapweb.Config{
		BaseURL: config.GetString("amap.baseUrl"),
		APIKey:  config.GetString("amap.apiKey"),
		Timeout: config.GetDuration("amap.httpTimeout"),
	}, logger)

	var searchOpts []search.Option
	if config.GetBool("search.cache.enabled") {
		if store := openSearchCache(); store != nil {
			searchOpts = append(searchOpts, search.WithCache(store))
		}
	}
	coordinator := search.NewCoordinator(client, logger, searchOpts...)

	surf := memsurface.New()
	b := bridge.New(surf, loader, coordinator, nil, logger)

	host, err := hostapi.New(b, version, logger)
	if err != nil {
		panic(fmt.Errorf("failed to build host api: %w", err))
	}
	return host, surf, cache
}

// openSearchCache connects the database (Postgres with SQLite fallback) and
// mounts the search result store on it. Failures disable caching only.
func openSearchCache() *searchcache.Store {
	mgr := database.NewManager(logger)
	if err := mgr.Connect(); err != nil {
		logger.Warn().Err(err).Msg("search cache disabled, no database")
		return nil
	}
	store, err := searchcache.New(mgr.DB, config.GetDuration("search.cache.ttl"), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("search cache disabled, migration failed")
		return nil
	}
	if pruned, err := store.Prune(); err == nil && pruned > 0 {
		logger.Info().Int64("pruned", pruned).Msg("Pruned expired search cache rows")
	}
	return store
}
