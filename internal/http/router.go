package api

import (
	"log"
	stdhttp "net/http"
	"time"

	intconfig "backoffice/internal/config"
	h "backoffice/internal/http/handlers"
	"backoffice/internal/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, api h.API) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), corsMiddleware())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authRequired := middleware.RequireAuth(env.JWTSecret)

	root := r.Group("/api")
	{
		root.GET("/health", h.Health)
		root.GET("/db-check", h.DBCheck)

		auth := root.Group("/auth")
		auth.POST("/login", api.Login)
		auth.POST("/register", api.Register)

		vehicles := root.Group("/vehicles")
		vehicles.GET("/:id/seat-map", api.GetSeatMap)
		vehicles.GET("/:id/manifest", api.GetVehicleManifest)
		vehicles.GET("/:id/seats/:number/ticket", api.GetSeatTicket)
		vehicles.POST("/:id/assign", authRequired, api.AssignSeats)
		vehicles.POST("/:id/release", authRequired, api.ReleaseSeats)

		sel := root.Group("/selection", authRequired)
		sel.GET("", api.GetSelection)
		sel.PUT("/mode", api.SetSelectionMode)
		sel.POST("/toggle", api.ToggleSeat)

		queue := root.Group("/queue", authRequired)
		queue.GET("", api.ListQueue)
		queue.POST("", api.EnqueueClient)
		queue.DELETE("/:id", api.DequeueClient)
		queue.POST("/:id/assign", api.AssignFromQueue)

		preferences := root.Group("/preferences", authRequired)
		preferences.GET("/:key", api.GetPreference)
		preferences.PUT("/:key", api.SetPreference)

		root.POST("/fares/quote", api.QuoteFare)

		expenses := root.Group("/expenses", authRequired)
		expenses.GET("", api.ListExpenses)
		expenses.POST("", api.CreateExpense)
		expenses.DELETE("/:id", api.DeleteExpense)

		root.GET("/closings/:month", authRequired, api.GetMonthlyClosing)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	return cors.New(cfg)
}
