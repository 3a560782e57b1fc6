package router

import (
	"client_manager_backend/internal/handlers"
	"client_manager_backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// SetupOpsRoutes registers the unauthenticated health and metrics endpoints.
func SetupOpsRoutes(engine *gin.Engine, healthHandler *handlers.HealthHandler) {
	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// SetupAuthRoutes sets up the authentication routes. Login is public; /me needs a token.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler, authMiddleware gin.HandlerFunc) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.LoginUser)
		authRoutes.GET("/me", authMiddleware, authHandler.GetCurrentUser)
	}
}

// SetupClientRoutes sets up the client routes.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.ListClients)
		clientRoutes.GET("/:id", clientHandler.ViewClient)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.RemoveClient)
	}
}
