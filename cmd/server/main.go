/*
main.go - Attribution service entry point

PURPOSE:
  Boots the overtime attribution service: opens the SQLite workspace store,
  wires the chi router on top of it, and runs the HTTP server until a
  shutdown signal arrives.

FLAGS:
  -port    HTTP listen port (default 8080)
  -db      SQLite path for workspace data; ":memory:" runs without a file

SHUTDOWN:
  SIGINT/SIGTERM stops the listener, drains in-flight requests for up to
  30s, then closes the store. Analysis results are never persisted, so an
  interrupted run loses nothing.

SEE ALSO:
  - api/server.go: Route tree and middleware
  - store/sqlite/sqlite.go: Workspace data store
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attribution-engine/api"
	"github.com/warp/attribution-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP listen port")
	dbPath := flag.String("db", "attribution.db", "SQLite database path (\":memory:\" for none)")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("[BOOT] Cannot open workspace store %q: %v", *dbPath, err)
	}
	defer store.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(api.NewHandler(store)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[BOOT] Attribution service listening on :%d (store: %s)", *port, *dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[BOOT] Listener failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("[SHUTDOWN] Received %v, draining requests", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("[SHUTDOWN] Drain failed: %v", err)
	}
	log.Println("[SHUTDOWN] Done")
}
