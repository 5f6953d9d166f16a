// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/snailbrook/staking/log"
)

// RequestLoggerHandler returns a http handler to ensure requests are syphoned into the logger.
// Requests are logged while enabled is set, or when they take longer than slowThreshold if it is non-zero.
func RequestLoggerHandler(handler http.Handler, logger log.Logger, enabled *atomic.Bool, slowThreshold time.Duration) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if !enabled.Load() && slowThreshold == 0 {
			handler.ServeHTTP(w, r)
			return
		}
		var bodyBytes []byte
		var err error
		if r.Body != nil {
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return // don't pass bad request to the next handler
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		start := time.Now()
		handler.ServeHTTP(w, r)

		duration := time.Since(start)
		if enabled.Load() || (slowThreshold > 0 && duration > slowThreshold) {
			logger.Info("API Request",
				"timestamp", start.Unix(),
				"durationMs", duration.Milliseconds(),
				"URI", r.URL.String(),
				"Method", r.Method,
				"Body", string(bodyBytes),
			)
		}
	}
	return http.HandlerFunc(fn)
}
