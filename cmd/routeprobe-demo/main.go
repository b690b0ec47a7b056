// Command routeprobe-demo runs a smoke test against a tiny in-process
// fixture API, printing any failures found. It exists to exercise the
// library end to end, not as a general-purpose CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/routeprobe/routeprobe"
	"github.com/routeprobe/routeprobe/middleware"
)

func main() {
	mux := chi.NewRouter()
	mux.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%q,"name":"demo"}`, id)
	})

	route, err := routeprobe.NewRouteSpec(
		"/users/{id}",
		[]string{"GET"},
		map[string]routeprobe.TypeRef{"id": routeprobe.Str()},
		nil, nil, nil,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	settings := routeprobe.DefaultSettings("http://fixture")
	settings.TrialsPerRoute = 20
	settings.Concurrency = 2

	engine, err := routeprobe.NewEngine(settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	engine.Transport = middleware.LoggingTransport(routeprobe.NewFixtureTransport(mux), logger)
	engine.Logger = logger

	result, err := engine.Run(context.Background(), []*routeprobe.RouteSpec{route})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("trials run: %d, failed: %d\n", result.Counters.TrialsRun, result.Counters.TrialsFailed)
	for _, f := range result.Failures {
		fmt.Println(f.String())
	}
}
