package router

import (
	"database/sql"
	"net/http"

	"client_manager_backend/internal/config"
	"client_manager_backend/internal/handlers"
	"client_manager_backend/internal/metrics"
	"client_manager_backend/internal/middleware"
	"client_manager_backend/internal/repositories"
	"client_manager_backend/internal/services"
	"client_manager_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// App bundles the services built by Setup so main can reuse them (e.g. for seeding).
type App struct {
	AuthService   services.AuthService
	ClientService services.ClientService
}

// NewEngine creates the gin engine with the global middleware stack.
func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	engine.Use(metrics.GinMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Route not found.", c.Request.URL.Path))
	})
	return engine
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config, tokens *utils.TokenManager) *App {
	// Initialize Repositories
	userRepo := repositories.NewUserRepository(db)
	clientRepo := repositories.NewClientRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, db, tokens)
	clientService := services.NewClientService(clientRepo, db, services.ClientServiceOptions{
		ViewTouchesUpdatedAt: cfg.ViewTouchesUpdatedAt,
	})

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	healthHandler := handlers.NewHealthHandler(db)

	SetupOpsRoutes(engine, healthHandler)

	api := engine.Group("/api")
	authMiddleware := middleware.AuthMiddleware(tokens)
	SetupAuthRoutes(api, authHandler, authMiddleware)

	authenticated := api.Group("")
	authenticated.Use(authMiddleware)
	{
		SetupClientRoutes(authenticated, clientHandler)
	}

	return &App{AuthService: authService, ClientService: clientService}
}
