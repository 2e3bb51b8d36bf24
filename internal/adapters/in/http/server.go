// Package http exposes the dispatch core over an echo server: the order and
// courier mutation endpoints, the branch snapshot resync read, and the SSE
// room stream. Branch-scoped reads require a capability token; mutation
// endpoints sit behind the surrounding platform's gateway.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dispatch/internal/adapters/broadcast"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler   commands.CreateOrderCommandHandler
	transitionHandler    commands.TransitionOrderCommandHandler
	assignHandler        commands.AssignCourierCommandHandler
	cancelHandler        commands.CancelOrderCommandHandler
	createCourierHandler commands.CreateCourierCommandHandler
	presenceHandler      commands.SetCourierPresenceCommandHandler
	ingestHandler        commands.IngestLocationCommandHandler

	// Query handlers
	snapshotHandler queries.GetBranchSnapshotQueryHandler

	router   *broadcast.Router
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewServer creates the HTTP server over the application's use cases.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	transitionHandler commands.TransitionOrderCommandHandler,
	assignHandler commands.AssignCourierCommandHandler,
	cancelHandler commands.CancelOrderCommandHandler,
	createCourierHandler commands.CreateCourierCommandHandler,
	presenceHandler commands.SetCourierPresenceCommandHandler,
	ingestHandler commands.IngestLocationCommandHandler,
	snapshotHandler queries.GetBranchSnapshotQueryHandler,
	router *broadcast.Router,
	verifier TokenVerifier,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:   createOrderHandler,
		transitionHandler:    transitionHandler,
		assignHandler:        assignHandler,
		cancelHandler:        cancelHandler,
		createCourierHandler: createCourierHandler,
		presenceHandler:      presenceHandler,
		ingestHandler:        ingestHandler,
		snapshotHandler:      snapshotHandler,
		router:               router,
		verifier:             verifier,
		logger:               logger.With("component", "http_server"),
	}
}

// RegisterRoutes wires the server's handlers into the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Use(PrometheusMiddleware())

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/:id/transition", s.TransitionOrder)
	api.POST("/orders/:id/assign", s.AssignCourier)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/couriers", s.CreateCourier)
	api.POST("/couriers/:id/online", s.SetCourierOnline)
	api.POST("/couriers/:id/available", s.SetCourierAvailable)
	api.POST("/couriers/:id/location", s.IngestCourierLocation)
	api.GET("/branches/:id/resync", s.ResyncBranch)
	api.GET("/branches/:id/stream", s.StreamBranch)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

type itemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type createOrderRequest struct {
	BranchID         *string          `json:"branchId"`
	OrderType        string           `json:"orderType"`
	Items            []itemRequest    `json:"items"`
	CustomerName     string           `json:"customerName"`
	CustomerPhone    string           `json:"customerPhone"`
	DeliveryLocation *locationRequest `json:"deliveryLocation"`
	Actor            string           `json:"actor"`
}

type orderResponse struct {
	OrderID   string    `json:"orderId"`
	BranchID  string    `json:"branchId"`
	OrderType string    `json:"orderType"`
	Status    string    `json:"status"`
	CourierID *string   `json:"courierId,omitempty"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

func orderToResponse(o *order.Order) orderResponse {
	response := orderResponse{
		OrderID:   o.ID().String(),
		BranchID:  o.BranchID().String(),
		OrderType: o.OrderType().String(),
		Status:    o.Status().String(),
		Total:     o.Total(),
		CreatedAt: o.CreatedAt(),
	}
	if courierID := o.Courier(); courierID != nil {
		id := courierID.String()
		response.CourierID = &id
	}
	return response
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request createOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	cmd, err := s.buildCreateOrderCommand(request)
	if err != nil {
		return s.respondError(ctx, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	recordOrderOperation("create", err == nil)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderToResponse(created))
}

func (s *Server) buildCreateOrderCommand(request createOrderRequest) (commands.CreateOrderCommand, error) {
	var branchID *kernel.UUID
	if request.BranchID != nil {
		id, err := kernel.UUIDFromString(*request.BranchID)
		if err != nil {
			return commands.CreateOrderCommand{}, errs.NewValueIsInvalidErrorWithCause("branchId", err)
		}
		branchID = &id
	}

	orderType, err := order.TypeFromString(request.OrderType)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	items := make([]order.Item, 0, len(request.Items))
	for _, raw := range request.Items {
		productID, err := kernel.UUIDFromString(raw.ProductID)
		if err != nil {
			return commands.CreateOrderCommand{}, errs.NewValueIsInvalidErrorWithCause("productId", err)
		}
		item, err := order.NewItem(productID, raw.Name, raw.Quantity, raw.UnitPrice)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
		items = append(items, item)
	}

	var deliveryLocation *kernel.GeoPoint
	if request.DeliveryLocation != nil {
		point, err := kernel.NewGeoPoint(request.DeliveryLocation.Lat, request.DeliveryLocation.Lon)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
		deliveryLocation = &point
	}

	return commands.NewCreateOrderCommand(
		kernel.NewUUID(), branchID, orderType, items,
		request.CustomerName, request.CustomerPhone, deliveryLocation, request.Actor,
	)
}

type transitionRequest struct {
	Target string `json:"target"`
	Actor  string `json:"actor"`
	Note   string `json:"note"`
}

// TransitionOrder handles POST /api/v1/orders/:id/transition.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid order id")
	}

	var request transitionRequest
	if err = ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	target, err := order.StatusFromString(request.Target)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, request.Actor, request.Note)
	if err != nil {
		return s.respondError(ctx, err)
	}

	updated, err := s.transitionHandler.Handle(ctx.Request().Context(), cmd)
	recordOrderOperation("transition", err == nil)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderToResponse(updated))
}

type assignRequest struct {
	CourierID string `json:"courierId"`
	Actor     string `json:"actor"`
}

// AssignCourier handles POST /api/v1/orders/:id/assign.
func (s *Server) AssignCourier(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid order id")
	}

	var request assignRequest
	if err = ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(request.CourierID)
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid courier id")
	}

	cmd, err := commands.NewAssignCourierCommand(orderID, courierID, request.Actor)
	if err != nil {
		return s.respondError(ctx, err)
	}

	updated, err := s.assignHandler.Handle(ctx.Request().Context(), cmd)
	recordOrderOperation("assign", err == nil)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderToResponse(updated))
}

type cancelRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid order id")
	}

	var request cancelRequest
	if err = ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, request.Reason, request.Actor)
	if err != nil {
		return s.respondError(ctx, err)
	}

	updated, err := s.cancelHandler.Handle(ctx.Request().Context(), cmd)
	recordOrderOperation("cancel", err == nil)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderToResponse(updated))
}

type createCourierRequest struct {
	BranchID string `json:"branchId"`
	Name     string `json:"name"`
}

type courierResponse struct {
	CourierID   string `json:"courierId"`
	BranchID    string `json:"branchId"`
	Name        string `json:"name"`
	IsOnline    bool   `json:"isOnline"`
	IsAvailable bool   `json:"isAvailable"`
}

// CreateCourier handles POST /api/v1/couriers.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var request createCourierRequest
	if err := ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	branchID, err := kernel.UUIDFromString(request.BranchID)
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid branch id")
	}

	cmd, err := commands.NewCreateCourierCommand(kernel.NewUUID(), branchID, request.Name)
	if err != nil {
		return s.respondError(ctx, err)
	}

	created, err := s.createCourierHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, courierResponse{
		CourierID:   created.ID().String(),
		BranchID:    created.BranchID().String(),
		Name:        created.Name(),
		IsOnline:    created.IsOnline(),
		IsAvailable: created.IsAvailable(),
	})
}

type onlineRequest struct {
	Online bool `json:"online"`
}

// SetCourierOnline handles POST /api/v1/couriers/:id/online.
func (s *Server) SetCourierOnline(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid courier id")
	}

	var request onlineRequest
	if err = ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	cmd, err := commands.NewSetCourierOnlineCommand(courierID, request.Online)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if _, err = s.presenceHandler.HandleSetOnline(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type availableRequest struct {
	Available bool `json:"available"`
}

// SetCourierAvailable handles POST /api/v1/couriers/:id/available.
func (s *Server) SetCourierAvailable(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid courier id")
	}

	var request availableRequest
	if err = ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	cmd, err := commands.NewSetCourierAvailableCommand(courierID, request.Available)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if _, err = s.presenceHandler.HandleSetAvailable(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type ingestLocationRequest struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

type ingestLocationResponse struct {
	Accepted bool `json:"accepted"`
}

// IngestCourierLocation handles POST /api/v1/couriers/:id/location. A stale
// report is not an error: the endpoint answers 200 with accepted=false.
func (s *Server) IngestCourierLocation(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid courier id")
	}

	var request ingestLocationRequest
	if err = ctx.Bind(&request); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(request.Lat, request.Lon)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewIngestLocationCommand(courierID, point, request.Timestamp)
	if err != nil {
		return s.respondError(ctx, err)
	}

	accepted, err := s.ingestHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ingestLocationResponse{Accepted: accepted})
}

// ResyncBranch handles GET /api/v1/branches/:id/resync. Room subscribers call
// it on connect and on a fixed interval to recover events lost while
// disconnected.
func (s *Server) ResyncBranch(ctx echo.Context) error {
	branchID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "validation_error", "Invalid branch id")
	}

	if err = s.authorizeBranch(ctx, branchID); err != nil {
		return s.respondError(ctx, err)
	}

	query, err := queries.NewGetBranchSnapshotQuery(branchID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	snapshot, err := s.snapshotHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, snapshot)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) fail(ctx echo.Context, status int, code string, message string) error {
	return ctx.JSON(status, errorBody{Code: code, Message: message})
}

// respondError maps the error taxonomy onto the JSON error envelope.
func (s *Server) respondError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrAuth):
		return s.fail(ctx, http.StatusUnauthorized, "auth_error", err.Error())
	case errors.Is(err, errs.ErrObjectNotFound):
		return s.fail(ctx, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		return s.fail(ctx, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, commands.ErrAssignmentConflict):
		return s.fail(ctx, http.StatusConflict, "assignment_conflict", err.Error())
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return s.fail(ctx, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, services.ErrUnresolvableLocation):
		return s.fail(ctx, http.StatusUnprocessableEntity, "unresolvable_location", err.Error())
	case errors.Is(err, commands.ErrBranchIsRequired),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return s.fail(ctx, http.StatusBadRequest, "validation_error", err.Error())
	default:
		s.logger.ErrorContext(ctx.Request().Context(), "request failed", "error", err)
		return s.fail(ctx, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
