package routes

import (
	"time"

	"rescueline/config"
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/repositories"
	"rescueline/services"
	"rescueline/utils"
	"rescueline/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

const apiVersion = "1.0.0"

// SetupRoutes wires repositories, services and controllers and registers
// every route group.
func SetupRoutes(cfg *config.Config, db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub) *gin.Engine {
	router := gin.New()

	repos := initializeRepositories(db)
	svcs := initializeServices(cfg, repos, hub)
	ctrls := initializeControllers(cfg, svcs, db, redisClient, hub)

	jwtService := utils.NewJWTService(cfg.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(
		redisClient,
		cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindowMinutes)*time.Minute,
	)

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(cfg.Environment))

	router.GET("/health", ctrls.Health.Health)

	api := router.Group("/api")
	{
		SetupAuthRoutes(api, ctrls.Auth, authMiddleware)
		SetupUserRoutes(api, ctrls.User, authMiddleware)
		SetupEmergencyRoutes(api, ctrls.Emergency, authMiddleware, rateLimiter)
		SetupOrganizationRoutes(api, ctrls.Organization, ctrls.Emergency, authMiddleware)
		SetupVolunteerRoutes(api, ctrls.Volunteer, ctrls.Emergency, authMiddleware)
	}

	SetupWebSocketRoutes(router, ctrls.WebSocket, authMiddleware)

	return router
}

type Repositories struct {
	User         *repositories.UserRepository
	Organization *repositories.OrganizationRepository
	Volunteer    *repositories.VolunteerRepository
	Emergency    *repositories.EmergencyRepository
	Admin        *repositories.AdminRepository
}

func initializeRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		User:         repositories.NewUserRepository(db),
		Organization: repositories.NewOrganizationRepository(db),
		Volunteer:    repositories.NewVolunteerRepository(db),
		Emergency:    repositories.NewEmergencyRepository(db),
		Admin:        repositories.NewAdminRepository(db),
	}
}

type Services struct {
	Auth         *services.AuthService
	User         *services.UserService
	Organization *services.OrganizationService
	Volunteer    *services.VolunteerService
	Location     *services.LocationService
	SMS          *services.SMSService
	Emergency    *services.EmergencyService
}

func initializeServices(cfg *config.Config, repos *Repositories, hub *websocket.Hub) *Services {
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	locationService := services.NewLocationService(
		repos.Organization,
		repos.Volunteer,
		cfg.MaxSearchRadiusKm,
		cfg.MaxOrganizationsToNotify,
		cfg.MaxVolunteersToNotify,
	)
	smsService := services.NewSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)

	return &Services{
		Auth:         services.NewAuthService(repos.Admin, jwtService),
		User:         services.NewUserService(repos.User, jwtService),
		Organization: services.NewOrganizationService(repos.Organization, jwtService),
		Volunteer:    services.NewVolunteerService(repos.Volunteer, jwtService),
		Location:     locationService,
		SMS:          smsService,
		Emergency:    services.NewEmergencyService(repos.Emergency, repos.User, locationService, smsService, hub),
	}
}

type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Organization *controllers.OrganizationController
	Volunteer    *controllers.VolunteerController
	Emergency    *controllers.EmergencyController
	WebSocket    *controllers.WebSocketController
	Health       *controllers.HealthController
}

func initializeControllers(cfg *config.Config, svcs *Services, db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub) *Controllers {
	return &Controllers{
		Auth:         controllers.NewAuthController(svcs.Auth),
		User:         controllers.NewUserController(svcs.User),
		Organization: controllers.NewOrganizationController(svcs.Organization, svcs.Location),
		Volunteer:    controllers.NewVolunteerController(svcs.Volunteer, svcs.Location),
		Emergency:    controllers.NewEmergencyController(svcs.Emergency),
		WebSocket:    controllers.NewWebSocketController(hub),
		Health:       controllers.NewHealthController(db, redisClient, apiVersion),
	}
}
