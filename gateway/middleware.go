/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package gateway

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/PivotLLM/ClickBridge/global"
	"github.com/PivotLLM/ClickBridge/logging"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func loggerFrom(ctx context.Context) *logging.Logger {
	l, _ := ctx.Value(loggerKey).(*logging.Logger)
	return l
}

// requestID tags each request with a fresh correlation id and a
// request-scoped logger
func (g *Gateway) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(global.HeaderRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = context.WithValue(ctx, loggerKey, g.logger.With("req="+id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests writes one line per request
func (g *Gateway) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		loggerFrom(r.Context()).Infof("%s %s -> %d (%s)", r.Method, r.URL.Path, status, time.Since(started).Round(time.Millisecond))
	})
}

// recoverPanics turns a handler panic into an internal_server_error response.
// A panic after the response has started is only logged.
func (g *Gateway) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if ww.Status() != 0 {
					loggerFrom(r.Context()).Errorf("panic after response started (status %d): %v", ww.Status(), rec)
					return
				}
				writeError(ww, r, &Error{
					Status:  http.StatusInternalServerError,
					Kind:    global.ErrKindInternal,
					Message: fmt.Sprintf("panic: %v", rec),
				})
			}
		}()
		next.ServeHTTP(ww, r)
	})
}

// authenticate rejects requests without the shared secret.
// It runs before routing, so unknown paths are rejected too.
func (g *Gateway) authenticate(next http.Handler) http.Handler {
	secret := []byte(g.config.SharedSecret())
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := []byte(r.Header.Get(global.HeaderSharedSecret))
		if len(secret) == 0 || len(presented) == 0 || subtle.ConstantTimeCompare(presented, secret) != 1 {
			writeError(w, r, &Error{
				Status:  http.StatusUnauthorized,
				Kind:    global.ErrKindUnauthorized,
				Message: "missing or invalid " + global.HeaderSharedSecret + " header",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
