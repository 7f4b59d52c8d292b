package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
	"github.com/storeforge/storeforge/pkg/server"
	"github.com/storeforge/storeforge/pkg/svc/reporter"
)

const testToken = "shared-secret"

type recordedCall struct {
	op  string
	req *v1alpha1.StoreRequest
}

// fakeOrchestrator records dispatched lifecycle calls.
type fakeOrchestrator struct {
	mu    sync.Mutex
	calls []recordedCall
	done  chan struct{}
}

func newFakeOrchestrator() *fakeOrchestrator {
	return &fakeOrchestrator{done: make(chan struct{}, 16)}
}

func (f *fakeOrchestrator) Provision(_ context.Context, req *v1alpha1.StoreRequest) {
	f.record("provision", req)
}

func (f *fakeOrchestrator) Delete(_ context.Context, req *v1alpha1.StoreRequest) {
	f.record("delete", req)
}

func (f *fakeOrchestrator) record(op string, req *v1alpha1.StoreRequest) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{op: op, req: req})
	f.mu.Unlock()

	f.done <- struct{}{}
}

func (f *fakeOrchestrator) waitForCall(t *testing.T) recordedCall {
	t.Helper()

	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no background call dispatched")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[len(f.calls)-1]
}

func (f *fakeOrchestrator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func newTestServer(t *testing.T) (*fakeOrchestrator, http.Handler) {
	t.Helper()

	orchestrator := newFakeOrchestrator()
	srv := server.New(":0", orchestrator, testToken, quietLogger())

	return orchestrator, srv.Handler()
}

func requestBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(v1alpha1.StoreRequest{
		StoreID:   "store-42",
		Name:      "shop-one",
		Engine:    v1alpha1.EngineWooCommerce,
		Namespace: "shop-one",
		Host:      "shop-one.example.com",
	})
	require.NoError(t, err)

	return body
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	t.Parallel()

	_, handler := newTestServer(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestProvision_MissingToken(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	request := httptest.NewRequest(
		http.MethodPost, "/orchestrate", bytes.NewReader(requestBody(t)))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, 0, orchestrator.callCount())
}

func TestProvision_WrongToken(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	request := httptest.NewRequest(
		http.MethodPost, "/orchestrate", bytes.NewReader(requestBody(t)))
	request.Header.Set(reporter.TokenHeader, "wrong")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, 0, orchestrator.callCount())
}

func TestProvision_Accepted(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	request := httptest.NewRequest(
		http.MethodPost, "/orchestrate", bytes.NewReader(requestBody(t)))
	request.Header.Set(reporter.TokenHeader, testToken)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusAccepted, recorder.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "store-42", response["store_id"])
	assert.Equal(t, string(v1alpha1.StateProvisioning), response["status"])

	call := orchestrator.waitForCall(t)
	assert.Equal(t, "provision", call.op)
	assert.Equal(t, "store-42", call.req.StoreID)
}

func TestProvision_InvalidBody(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	request := httptest.NewRequest(
		http.MethodPost, "/orchestrate", bytes.NewReader([]byte("{not json")))
	request.Header.Set(reporter.TokenHeader, testToken)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, orchestrator.callCount())
}

func TestProvision_ValidationFailure(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	body, err := json.Marshal(v1alpha1.StoreRequest{
		StoreID:   "store-42",
		Name:      "Invalid Name",
		Engine:    v1alpha1.EngineWooCommerce,
		Namespace: "shop-one",
		Host:      "shop-one.example.com",
	})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/orchestrate", bytes.NewReader(body))
	request.Header.Set(reporter.TokenHeader, testToken)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, orchestrator.callCount())
}

func TestDelete_Accepted(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	request := httptest.NewRequest(
		http.MethodDelete, "/orchestrate/store-42", bytes.NewReader(requestBody(t)))
	request.Header.Set(reporter.TokenHeader, testToken)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusAccepted, recorder.Code)

	var response map[string]string
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, string(v1alpha1.StateDeleting), response["status"])

	call := orchestrator.waitForCall(t)
	assert.Equal(t, "delete", call.op)
}

func TestDelete_PathMismatch(t *testing.T) {
	t.Parallel()

	orchestrator, handler := newTestServer(t)

	request := httptest.NewRequest(
		http.MethodDelete, "/orchestrate/other-store", bytes.NewReader(requestBody(t)))
	request.Header.Set(reporter.TokenHeader, testToken)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, orchestrator.callCount())
}

func TestListenAndServe_ShutsDownOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0", newFakeOrchestrator(), testToken, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
