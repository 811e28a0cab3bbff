package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "publimar/internal/adapters/web"
	"publimar/internal/app"
	"publimar/internal/core"
	"publimar/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	clientService := core.NewClientService(pool)
	catalogService := core.NewCatalogService(pool)
	quoteService := core.NewQuoteService(pool)
	orderService := core.NewOrderService(pool)
	numberingService := core.NewNumberingService(pool)
	reportingService := core.NewReportingService(pool)

	svc := app.NewAppService(pool, clientService, catalogService, quoteService, orderService, numberingService, reportingService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
