// Discovery engine server for the COP encyclopedia
// Serves search, cross-linking and link suggestions over JSON/HTTP
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roofpedia/copengine/internal/catalog"
	"github.com/roofpedia/copengine/internal/logger"
	"github.com/roofpedia/copengine/internal/metrics"
	"github.com/roofpedia/copengine/internal/server"
	"github.com/roofpedia/copengine/pkg/corpus"
)

var (
	port        = flag.Int("port", 8080, "API server port")
	metricsPort = flag.Int("metrics-port", 9090, "Observability server port")
	corpusDir   = flag.String("corpus", "corpus", "Directory holding chapter-*.json files")
	dbConn      = flag.String("db", "", "Postgres connection string for the detail catalogs (optional)")
	watch       = flag.Bool("watch", false, "Watch the corpus directory and invalidate on change")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	pretty      = flag.Bool("pretty", false, "Pretty-print logs for development")
)

func main() {
	flag.Parse()

	logger.InitGlobalLogger(logger.Config{
		Level:  *logLevel,
		Pretty: *pretty,
	})
	log := logger.GetGlobalLogger()
	m := metrics.NewMetrics()

	log.LogServerStart(*port, *corpusDir)

	load := func() ([]*corpus.Chapter, error) {
		return corpus.LoadDir(*corpusDir)
	}

	var catalogStore server.CatalogSource
	if *dbConn != "" {
		store, err := catalog.NewStore(context.Background(), *dbConn)
		if err != nil {
			log.Fatal("Failed to connect catalog store").Err(err).Send()
		}
		defer store.Close()
		catalogStore = store
	} else {
		log.Warn("No catalog database configured").
			Msg("Link suggestions endpoint will be unavailable")
	}

	srv := server.NewServer(load, catalogStore, log, m)

	// Warm the index up front; a failure here is retried per request.
	if err := srv.Warm(); err != nil {
		log.Warn("Initial corpus load failed").Err(err).Send()
	}

	if *watch {
		watcher, err := corpus.NewWatcher(*corpusDir, srv.Invalidate)
		if err != nil {
			log.Fatal("Failed to watch corpus directory").Err(err).Send()
		}
		defer watcher.Close()
		log.Info("Watching corpus directory").Str("dir", *corpusDir).Send()
	}

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	obsServer := server.NewObservabilityServer(*metricsPort, log)
	go func() {
		if err := obsServer.Start(); err != nil {
			log.Error("Observability server stopped").Err(err).Send()
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.LogServerShutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(ctx); err != nil {
			log.Error("API server shutdown failed").Err(err).Send()
		}
		if err := obsServer.Shutdown(ctx); err != nil {
			log.Error("Observability server shutdown failed").Err(err).Send()
		}
	}()

	log.LogServerReady(*port)
	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("API server failed").Err(err).Send()
	}
}
