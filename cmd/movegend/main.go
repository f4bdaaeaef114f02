// Command movegend serves legal moves, game status and perft over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quint-chess/internal/logging"
	"quint-chess/internal/server"
	"quint-chess/quintmg"
)

func main() {
	addr := flag.String("addr", ":8080", "Address to listen on")
	maxDepth := flag.Int("max-depth", server.DefaultMaxDepth, "Deepest perft a request may ask for")
	level := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	log, err := logging.Setup(*level, "movegend")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *maxDepth < 1 {
		fmt.Fprintln(os.Stderr, "-max-depth must be >= 1")
		os.Exit(2)
	}

	app := server.NewApplication(quintmg.NewLookupTable(),
		server.WithMaxDepth(*maxDepth),
		server.WithAccessLog(os.Stdout),
	)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", *addr, "max-depth", *maxDepth)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", "error", err)
		os.Exit(1)
	}
}
