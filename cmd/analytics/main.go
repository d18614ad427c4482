package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/analytics"
	"github.com/imrishuroy/go-fraud-orderflow/internal/awsclients"
	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
)

// The analytics read side runs as a plain HTTP service rather than behind
// the Lambda adapter; it serves dashboards inside the VPC.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "finops-analytics").Logger()

	clients, err := awsclients.NewAWSClients(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init aws clients")
	}

	store := orders.NewStore(clients.DynamoDB, os.Getenv("ORDERS_TABLE"))
	stats := analytics.NewStatsService(store)
	costs := analytics.NewCostExplorer(clients.CostExplorer)
	reports := analytics.NewReportService(stats, costs)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	analytics.RegisterFinOpsRoutes(r, stats, costs, reports)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Info().Str("addr", addr).Msg("running analytics server")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
