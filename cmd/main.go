package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/accountsys/ledger/internal/api"
	"github.com/accountsys/ledger/internal/db"
	"github.com/accountsys/ledger/internal/events"
	"github.com/accountsys/ledger/internal/events/kafka"
	"github.com/accountsys/ledger/internal/ledger"
	"github.com/accountsys/ledger/internal/repository/memory"
	"github.com/accountsys/ledger/internal/repository/postgres"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file, using system environment variables")
	}

	// Initialize a new Fiber app
	app := fiber.New()

	// Store selection: postgres when DATABASE_URL is set, in-memory otherwise
	var store ledger.AccountStore
	if url := os.Getenv("DATABASE_URL"); url != "" {
		pool := db.NewConnection(url)
		defer pool.Close()

		pg := postgres.NewStore(pool)
		if err := pg.InitSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize db schema: %v", err)
		}
		store = pg
	} else {
		log.Printf("DATABASE_URL not set, using in-memory store")
		store = memory.NewStore()
	}

	// Event publisher: Kafka when KAFKA_BROKERS is set
	var publisher events.Publisher = events.NopPublisher{}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kp := kafka.NewPublisher(strings.Split(brokers, ","), ledger.TopicTransactions)
		defer kp.Close()
		publisher = kp
	}

	svc := ledger.NewService(store, publisher)

	// Initialize the API routes
	api.InitializeRoutes(app, svc)

	addr := os.Getenv("LEDGER_ADDR")
	if addr == "" {
		addr = ":8000"
	}
	log.Fatal(app.Listen(addr))
}
