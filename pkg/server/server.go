// Package server exposes the orchestration HTTP entry point. It accepts
// lifecycle requests, acknowledges them immediately and dispatches the actual
// work to background pipelines; the only synchronous work per request is
// authentication and payload validation.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
	"github.com/storeforge/storeforge/pkg/svc/reporter"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
	readTimeout     = 30 * time.Second
)

// Orchestrator is the lifecycle service behind the HTTP surface.
type Orchestrator interface {
	Provision(ctx context.Context, req *v1alpha1.StoreRequest)
	Delete(ctx context.Context, req *v1alpha1.StoreRequest)
}

// Server is the orchestration HTTP server.
type Server struct {
	orchestrator Orchestrator
	token        string
	logger       logrus.FieldLogger

	httpServer *http.Server

	// baseCtx parents every background pipeline so shutdown can cancel them.
	baseCtx    context.Context
	cancelBase context.CancelFunc
	pipelines  sync.WaitGroup
}

// New creates the server bound to addr.
func New(
	addr string,
	orchestrator Orchestrator,
	token string,
	logger logrus.FieldLogger,
) *Server {
	baseCtx, cancelBase := context.WithCancel(context.Background())

	server := &Server{
		orchestrator: orchestrator,
		token:        token,
		logger:       logger,
		baseCtx:      baseCtx,
		cancelBase:   cancelBase,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", server.handleHealthz)
	mux.HandleFunc("POST /orchestrate", server.authenticated(server.handleProvision))
	mux.HandleFunc("DELETE /orchestrate/{storeID}", server.authenticated(server.handleDelete))

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readTimeout,
	}

	return server
}

// Handler exposes the route mux, primarily for tests driving requests
// without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until ctx is cancelled, then drains
// in-flight HTTP requests and cancels background pipelines.
func (s *Server) ListenAndServe(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.WithField("addr", s.httpServer.Addr).Info("orchestrator listening")

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr := s.httpServer.Shutdown(shutdownCtx)

		// Cancel pipelines after the HTTP drain so accepted requests are not
		// cut off mid-acknowledgement, then give them the same grace window.
		s.cancelBase()

		done := make(chan struct{})
		go func() {
			s.pipelines.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-shutdownCtx.Done():
			s.logger.Warn("background pipelines did not drain before deadline")
		}

		if shutdownErr != nil {
			return fmt.Errorf("http shutdown: %w", shutdownErr)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		s.cancelBase()

		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// authenticated wraps a handler with the shared-token check. The comparison
// is constant-time so the token cannot be probed byte by byte.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(reporter.TokenHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) != 1 {
			s.logger.WithField("remote", r.RemoteAddr).Warn("rejected request: bad token")
			writeJSONError(w, http.StatusUnauthorized, "invalid or missing token")

			return
		}

		next(w, r)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProvision(w http.ResponseWriter, r *http.Request) {
	req, err := decodeStoreRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())

		return
	}

	s.logger.WithFields(logrus.Fields{
		"store_id": req.StoreID,
		"engine":   string(req.Engine),
	}).Info("accepted provisioning request")

	s.dispatch(func(ctx context.Context) {
		s.orchestrator.Provision(ctx, req)
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"store_id": req.StoreID,
		"status":   string(v1alpha1.StateProvisioning),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	req, err := decodeStoreRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())

		return
	}

	if pathID := r.PathValue("storeID"); pathID != req.StoreID {
		writeJSONError(w, http.StatusBadRequest, "store_id does not match request path")

		return
	}

	s.logger.WithField("store_id", req.StoreID).Info("accepted deletion request")

	s.dispatch(func(ctx context.Context) {
		s.orchestrator.Delete(ctx, req)
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"store_id": req.StoreID,
		"status":   string(v1alpha1.StateDeleting),
	})
}

// dispatch runs work on a background pipeline parented to the server
// lifetime, not the HTTP request: the request is acknowledged with 202 and
// its context dies with the response.
func (s *Server) dispatch(work func(ctx context.Context)) {
	s.pipelines.Add(1)

	go func() {
		defer s.pipelines.Done()
		work(s.baseCtx)
	}()
}

func decodeStoreRequest(r *http.Request) (*v1alpha1.StoreRequest, error) {
	defer func() { _ = r.Body.Close() }()

	var req v1alpha1.StoreRequest

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
