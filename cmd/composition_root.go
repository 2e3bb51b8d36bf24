package cmd

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/adapters/broadcast"
	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/georepo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	router     *broadcast.Router
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewCompositionRoot wires the application graph. The publisher is the
// post-commit event sink shared by every command handler; in production it
// fans out to the broadcast router and the notification dispatcher.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	router *broadcast.Router,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		router:     router,
		publisher:  publisher,
		logger:     logger,
	}
}

func (c *CompositionRoot) CreateGeoRepository() ports.GeoRepository {
	return georepo.NewGormGeoRepository(c.gormDB)
}

func (c *CompositionRoot) CreateBranchResolver() services.BranchResolver {
	return services.NewBranchResolver(c.config.MaxFallbackMeters)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.CreateGeoRepository(), c.CreateBranchResolver(), c.publisher)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignCourierCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateSetCourierPresenceCommandHandler() commands.SetCourierPresenceCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetCourierPresenceCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateIngestLocationCommandHandler() commands.IngestLocationCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewIngestLocationCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetBranchSnapshotQueryHandler() queries.GetBranchSnapshotQueryHandler {
	return queries.NewGetBranchSnapshotQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateAssignCourierCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateCreateCourierCommandHandler(),
		c.CreateSetCourierPresenceCommandHandler(),
		c.CreateIngestLocationCommandHandler(),
		c.CreateGetBranchSnapshotQueryHandler(),
		c.router,
		httpadapter.NewTokenVerifier(c.config.JWTSecret),
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager(snapshotInterval time.Duration) *jobs.JobManager {
	snapshotHandler := c.CreateGetBranchSnapshotQueryHandler()
	return jobs.NewJobManager(
		snapshotHandler,
		c.CreateGeoRepository(),
		c.publisher,
		snapshotInterval,
		c.logger,
	)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// FanoutPublisher delivers every event to each sink in order. Sinks are
// best-effort on their own; fan-out adds no error handling of its own.
type FanoutPublisher struct {
	sinks []ports.EventPublisher
}

func NewFanoutPublisher(sinks ...ports.EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{sinks: sinks}
}

func (p *FanoutPublisher) Publish(ctx context.Context, event events.Event) {
	for _, sink := range p.sinks {
		sink.Publish(ctx, event)
	}
}
