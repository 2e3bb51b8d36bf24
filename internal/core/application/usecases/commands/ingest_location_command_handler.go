package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/ports"
)

// IngestLocationCommandHandler records courier location reports.
//
// An out-of-order report (timestamp not strictly newer than the stored one) is
// dropped: Handle returns false, nothing is written, no event is published,
// and the drop is logged once here. The caller treats ingestion as
// fire-and-forget; the drop rule is the only backpressure mechanism.
type IngestLocationCommandHandler struct {
	uowFactory CourierUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewIngestLocationCommandHandler creates a handler for location ingestion.
func NewIngestLocationCommandHandler(
	uowFactory CourierUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) IngestLocationCommandHandler {
	return IngestLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "location_ingest"),
	}
}

// Handle processes a location report. Returns whether the report was accepted.
func (h IngestLocationCommandHandler) Handle(ctx context.Context, cmd IngestLocationCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return false, err
	}

	accepted, err := aggregate.IngestLocation(cmd.Point(), cmd.Timestamp())
	if err != nil {
		return false, err
	}

	if !accepted {
		h.logger.InfoContext(ctx, "stale location ignored",
			"courier_id", cmd.CourierID().String(),
			"report_time", cmd.Timestamp(),
		)
		return false, nil
	}

	if err = uow.CourierRepository().Update(ctx, aggregate); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.publisher.Publish(ctx, events.NewCourierLocationChanged(aggregate, time.Now().UTC()))
	return true, nil
}
