// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/debug"
	"github.com/snailbrook/staking/api/events"
	"github.com/snailbrook/staking/api/period"
	"github.com/snailbrook/staking/api/pools"
	"github.com/snailbrook/staking/api/stakers"
	"github.com/snailbrook/staking/api/subscriptions"
	"github.com/snailbrook/staking/co"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/metrics"
	"github.com/snailbrook/staking/staking"
)

var logger = log.WithContext("pkg", "api")

type APIConfig struct {
	AllowedOrigins       string
	EventsLimit          uint64
	BacklogLimit         uint64
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	// SoloClock mounts the /debug endpoints when set.
	SoloClock            *staking.ManualClock
}

// NewAPIHandler returns the API handler and a function to release its resources.
func NewAPIHandler(engine *staking.Engine, config APIConfig) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(config.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pools.New(engine).Mount(router, "/pools")
	stakers.New(engine).Mount(router, "/stakers")
	period.New(engine).Mount(router, "/period")
	events.New(engine, config.EventsLimit).Mount(router, "/events")

	subs := subscriptions.New(engine, origins, config.BacklogLimit)
	subs.Mount(router, "/subscriptions")

	if config.SoloClock != nil {
		debug.New(engine, config.SoloClock).Mount(router, "/debug")
	}

	if config.EnableMetrics {
		router.Use(api.MetricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{"x-revert-kind"}),
	)(handler)

	enabled := config.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = api.RequestLoggerHandler(handler, logger, enabled, config.SlowQueriesThreshold)

	return handler, subs.Close
}

// StartAPIServer serves the staking API on addr, returning its url and a function to stop it.
func StartAPIServer(addr string, engine *staking.Engine, config APIConfig) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	handler, closeHandler := NewAPIHandler(engine, config)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		closeHandler()
		srv.Close()
		goes.Wait()
	}, nil
}

func StartMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
