package courierrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CourierRepositoryIntegrationTestSuite verifies courier persistence behavior
// against a real PostgreSQL container, including the optimistic version check
// that arbitrates racing presence writes.
type CourierRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *courierrepo.GormCourierRepository
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&courierrepo.CourierDTO{}))
}

func (suite *CourierRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE couriers").Error)
	suite.repository = courierrepo.NewGormCourierRepository(suite.db)
}

func (suite *CourierRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CourierRepositoryIntegrationTestSuite) createTestCourier() *courier.Courier {
	aggregate, err := courier.NewCourier(kernel.NewUUID(), kernel.NewUUID(), "Bekzod")
	suite.Require().NoError(err)
	return aggregate
}

func (suite *CourierRepositoryIntegrationTestSuite) TestAddAndGetRoundTrip() {
	ctx := context.Background()
	aggregate := suite.createTestCourier()

	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	loaded, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Equal("Bekzod", loaded.Name())
	suite.False(loaded.IsOnline())
	suite.Nil(loaded.Location())
	suite.Equal(0, loaded.Version())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestUpdatePersistsLocationWholesale() {
	ctx := context.Background()
	aggregate := suite.createTestCourier()
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	point, err := kernel.NewGeoPoint(41.31, 69.24)
	suite.Require().NoError(err)
	reportedAt := time.Now().UTC().Truncate(time.Microsecond)
	accepted, err := aggregate.IngestLocation(point, reportedAt)
	suite.Require().NoError(err)
	suite.Require().True(accepted)

	suite.Require().NoError(suite.repository.Update(ctx, aggregate))

	loaded, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(loaded.Location())

	equal, err := loaded.Location().Point().IsEqual(point)
	suite.Require().NoError(err)
	suite.True(equal)
	suite.True(loaded.Location().UpdatedAt().Equal(reportedAt))
	suite.Equal(1, loaded.Version())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestRacingWritersConflictOnVersion() {
	ctx := context.Background()
	aggregate := suite.createTestCourier()
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	first, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)

	first.SetAvailable(false)
	suite.Require().NoError(suite.repository.Update(ctx, first))

	second.SetAvailable(false)
	err = suite.repository.Update(ctx, second)
	suite.Require().ErrorIs(err, errs.ErrConcurrencyConflict)

	loaded, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.False(loaded.IsAvailable())
	suite.Equal(1, loaded.Version())
}

func (suite *CourierRepositoryIntegrationTestSuite) TestGetMissingCourierReturnsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestCourierRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CourierRepositoryIntegrationTestSuite))
}
