/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Zuplu/sc-overlay/internal/utils/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	MAX_BODY_BYTES   = 64 << 10
	SHUTDOWN_TIMEOUT = 5 * time.Second
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

type askRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// NewRouter exposes the acquisition components to the overlay UI. Operations
// always answer 200 with their result; only malformed requests are 400.
func NewRouter(s *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.StatusView(r.Context()))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Assistant.Health(r.Context()))
	})
	r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, MAX_BODY_BYTES))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: "Malformed request body"})
			return
		}
		writeJSON(w, http.StatusOK, s.Ask(r.Context(), req.Question))
	})
	r.Get("/image", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Images.Resolve(r.Context(), r.URL.Query().Get("topic")))
	})
	r.Get("/image/data", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Embedder.Fetch(r.Context(), r.URL.Query().Get("url")))
	})
	r.Get("/ships", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Ships.Search(r.Context(), r.URL.Query().Get("q")))
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warnf("Could not write response: %v", err)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return s
	}
	return ""
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("Panic while serving %s %s [%s]: %v", r.Method, r.URL.Path, requestIDFromContext(r.Context()), rec)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: true, Message: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)
		log.Debugf("%s %s -> %d in %v [%s]", r.Method, r.URL.Path, recorder.statusCode, time.Since(start).Round(time.Millisecond), requestIDFromContext(r.Context()))
	})
}

// startHTTPServer serves until ctx is cancelled.
func startHTTPServer(ctx context.Context, address string, handler http.Handler) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Errorf("Error starting HTTP server: %v", err)
		return err
	}
	log.Infof("Listening on %s...", listener.Addr())

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
