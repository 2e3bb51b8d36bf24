package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/broadcast"
	"dispatch/internal/adapters/out/notify"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := openDatabase(configs)

	amqpClient, err := notify.Dial(configs.AmqpURL)
	if err != nil {
		log.Fatalf("Error connecting to AMQP broker: %v", err)
	}
	defer amqpClient.Close()

	router := broadcast.NewRouter(logger)
	dispatcher := notify.NewDispatcher(amqpClient, logger)
	publisher := cmd.NewFanoutPublisher(router, dispatcher)

	app := cmd.NewCompositionRoot(configs, gormDB, router, publisher, logger)

	jobManager := app.CreateJobManager(snapshotInterval(configs))
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:          goDotEnvVariable("HTTP_PORT"),
		DBHost:            goDotEnvVariable("DB_HOST"),
		DBPort:            goDotEnvVariable("DB_PORT"),
		DBUser:            goDotEnvVariable("DB_USER"),
		DBPassword:        goDotEnvVariable("DB_PASSWORD"),
		DBName:            goDotEnvVariable("DB_NAME"),
		DBSslMode:         goDotEnvVariable("DB_SSLMODE"),
		AmqpURL:           goDotEnvVariable("AMQP_URL"),
		JWTSecret:         goDotEnvVariable("JWT_SECRET"),
		MaxFallbackMeters: floatEnvVariable("RESOLVER_MAX_FALLBACK_METERS"),
		SnapshotInterval:  goDotEnvVariable("SNAPSHOT_INTERVAL"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func floatEnvVariable(key string) float64 {
	value, err := strconv.ParseFloat(goDotEnvVariable(key), 64)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return value
}

func snapshotInterval(configs cmd.Config) time.Duration {
	interval, err := time.ParseDuration(configs.SnapshotInterval)
	if err != nil {
		log.Fatalf("Error parsing SNAPSHOT_INTERVAL: %v", err)
	}
	return interval
}

func openDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	return gormDB
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	app.CreateHTTPServer().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
