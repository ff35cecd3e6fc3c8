package controllers

import (
	"net/http"
	"time"

	"rescueline/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthController struct {
	db      *mongo.Database
	redis   *redis.Client
	version string
}

func NewHealthController(db *mongo.Database, redisClient *redis.Client, version string) *HealthController {
	return &HealthController{
		db:      db,
		redis:   redisClient,
		version: version,
	}
}

func (hc *HealthController) Health(c *gin.Context) {
	ctx := c.Request.Context()
	services := map[string]string{}
	status := "healthy"

	if err := hc.db.Client().Ping(ctx, nil); err != nil {
		services["mongodb"] = "down"
		status = "degraded"
	} else {
		services["mongodb"] = "up"
	}

	if hc.redis != nil {
		if err := hc.redis.Ping(ctx).Err(); err != nil {
			services["redis"] = "down"
			status = "degraded"
		} else {
			services["redis"] = "up"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
		Version:   hc.version,
	})
}
