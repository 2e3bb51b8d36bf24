package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch/internal/adapters/broadcast"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// heartbeatInterval paces SSE comment frames so intermediaries keep the
// connection open and dead clients are detected by the write failing.
const heartbeatInterval = 15 * time.Second

// StreamBranch handles GET /api/v1/branches/:id/stream. It joins the caller
// to the branch room and relays room events as SSE frames until the client
// disconnects or the subscriber is evicted. Events published before the join
// are gone: the client is expected to call the resync endpoint on connect.
func (s *Server) StreamBranch(ctx echo.Context) error {
	branchID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid branch id")
	}

	if err = s.authorizeBranch(ctx, branchID); err != nil {
		return s.respondError(ctx, err)
	}

	subscriber := broadcast.NewSubscriber()
	s.router.Join(branchID, subscriber)
	defer s.router.Leave(branchID, subscriber)

	response := ctx.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.Header().Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return nil

		case event, ok := <-subscriber.Events():
			if !ok {
				// Evicted by the router; the client resyncs on reconnect.
				return nil
			}
			if err := writeSSE(response, event); err != nil {
				return nil
			}

		case <-heartbeat.C:
			if _, err := fmt.Fprint(response, ": ping\n\n"); err != nil {
				return nil
			}
			response.Flush()
		}
	}
}

func writeSSE(response *echo.Response, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err = fmt.Fprintf(response, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	response.Flush()
	return nil
}
