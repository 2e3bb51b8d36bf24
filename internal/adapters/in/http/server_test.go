package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/broadcast"
	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer builds a server whose command and query handlers are zero
// values: only the routes that never reach a handler (auth rejections, the
// SSE relay) are exercised here. Handler behavior is covered by the
// application-layer tests.
func newTestServer(router *broadcast.Router) *echo.Echo {
	server := httpadapter.NewServer(
		commands.CreateOrderCommandHandler{},
		commands.TransitionOrderCommandHandler{},
		commands.AssignCourierCommandHandler{},
		commands.CancelOrderCommandHandler{},
		commands.CreateCourierCommandHandler{},
		commands.SetCourierPresenceCommandHandler{},
		commands.IngestLocationCommandHandler{},
		queries.GetBranchSnapshotQueryHandler{},
		router,
		httpadapter.NewTokenVerifier(testSecret),
		slog.Default(),
	)

	e := echo.New()
	server.RegisterRoutes(e)
	return e
}

func TestResyncWithoutTokenIsUnauthorized(t *testing.T) {
	e := newTestServer(broadcast.NewRouter(slog.Default()))

	request := httptest.NewRequest(http.MethodGet,
		"/api/v1/branches/"+kernel.NewUUID().String()+"/resync", nil)
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "auth_error", body["code"])
}

func TestResyncWithTokenForAnotherBranchIsUnauthorized(t *testing.T) {
	e := newTestServer(broadcast.NewRouter(slog.Default()))

	token, err := httpadapter.IssueBranchToken(testSecret, kernel.NewUUID(), time.Minute)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet,
		"/api/v1/branches/"+kernel.NewUUID().String()+"/resync", nil)
	request.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateOrderWithMalformedBodyIsBadRequest(t *testing.T) {
	e := newTestServer(broadcast.NewRouter(slog.Default()))

	request := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
		strings.NewReader(`{"orderType": "teleport"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(broadcast.NewRouter(slog.Default()))

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestStreamRelaysRoomEvents(t *testing.T) {
	router := broadcast.NewRouter(slog.Default())
	e := newTestServer(router)

	server := httptest.NewServer(e)
	defer server.Close()

	branchID := kernel.NewUUID()
	token, err := httpadapter.IssueBranchToken(testSecret, branchID, time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/branches/%s/stream?token=%s", server.URL, branchID, token)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	// The join happens inside the handler; publish until the subscriber is
	// attached and the first frame arrives.
	published := events.Event{
		BranchID:  branchID,
		Type:      events.OrderCreated,
		Payload:   events.OrderPayload{OrderID: kernel.NewUUID().String(), Status: "pending"},
		EmittedAt: time.Now().UTC(),
	}
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				router.Publish(ctx, published)
			}
		}
	}()

	scanner := bufio.NewScanner(response.Body)
	var eventLine, dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventLine = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLine = strings.TrimPrefix(line, "data: ")
		}
		if eventLine != "" && dataLine != "" {
			break
		}
	}

	require.Equal(t, string(events.OrderCreated), eventLine)

	var received events.Event
	require.NoError(t, json.Unmarshal([]byte(dataLine), &received))
	assert.Equal(t, events.OrderCreated, received.Type)
	assert.True(t, received.BranchID.IsEqual(branchID))
}
