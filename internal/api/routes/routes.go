// internal/api/routes/routes.go
package routes

import (
	"time"

	"ride-marketplace-api-server/config"
	"ride-marketplace-api-server/internal/api/handlers"
	"ride-marketplace-api-server/internal/api/middleware"
	"ride-marketplace-api-server/internal/o11y"
	"ride-marketplace-api-server/internal/rides"
	"ride-marketplace-api-server/internal/s3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "ride-marketplace-api"

// SetupRouter builds the gin engine. s3Uploader may be nil, in which case
// the export route is not registered.
func SetupRouter(
	cfg config.Config,
	svc *rides.Service,
	s3Uploader *s3.Uploader,
	obs *o11y.Observability,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Tracing(serviceName))
	router.Use(middleware.Logging(obs.Logger))
	router.Use(middleware.Metrics(obs.Registry))

	rideHandler := &handlers.RideHandler{Svc: svc}
	bidHandler := &handlers.BidHandler{Svc: svc}
	healthHandler := &handlers.HealthHandler{Store: svc, Timeout: cfg.Mongo.OperationTimeout}

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		rideRoutes := api.Group("/rides")
		{
			rideRoutes.POST("", rideHandler.RequestRide)
			rideRoutes.GET("", rideHandler.ListRides)
			rideRoutes.GET("/:rideId", rideHandler.GetRide)
			rideRoutes.DELETE("/:rideId", rideHandler.DeleteRide)

			rideRoutes.POST("/:rideId/bids", bidHandler.SubmitBid)
			rideRoutes.GET("/:rideId/bids", bidHandler.ListBids)
			rideRoutes.POST("/:rideId/bids/:bidId/accept", bidHandler.AcceptBid)
		}

		if s3Uploader != nil {
			exportHandler := &handlers.ExportHandler{Svc: svc, Uploader: s3Uploader, Prefix: cfg.S3.Prefix}
			api.POST("/exports/rides", exportHandler.ExportRides)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}
