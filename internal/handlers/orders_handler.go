package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-fraud-orderflow/internal/orders"
	"github.com/imrishuroy/go-fraud-orderflow/internal/pipeline"
)

// RegisterOrdersRoutes registers routes for the order intake API.
func RegisterOrdersRoutes(r *gin.Engine, proc *pipeline.Processor) {
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		corrID := c.GetHeader("X-Request-Id")
		if corrID == "" {
			corrID = uuid.NewString()
		}

		var order orders.Order
		if err := c.ShouldBindJSON(&order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid_request_body",
				"msg":   err.Error(),
			})
			return
		}

		logger := log.With().Str("correlation_id", corrID).Str("order_id", order.OrderID).Logger()
		logger.Info().Msg("processing order request")

		resp, code, err := proc.Process(ctx, &order)
		if err != nil {
			// never leak internal detail to the caller
			logger.Error().Err(err).Msg("order processing failed")
			c.JSON(code, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(code, resp)
	})
}
