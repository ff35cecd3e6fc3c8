package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/models"
	"rescueline/services"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// emptyEmergencyStore satisfies services.EmergencyStore without any data so
// the router's authorization layer can be exercised in isolation.
type emptyEmergencyStore struct{}

func (emptyEmergencyStore) Create(ctx context.Context, request *models.EmergencyRequest) error {
	return nil
}

func (emptyEmergencyStore) GetByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	return nil, mongo.ErrNoDocuments
}

func (emptyEmergencyStore) Update(ctx context.Context, id string, updateFields bson.M) error {
	return nil
}

func (emptyEmergencyStore) List(ctx context.Context, status, emergencyType string, page, limit int) ([]models.EmergencyRequest, int64, error) {
	return nil, 0, nil
}

func (emptyEmergencyStore) FindByNotifiedResponder(ctx context.Context, listField string, responderID primitive.ObjectID, status string) ([]models.EmergencyRequest, error) {
	return nil, nil
}

func (emptyEmergencyStore) RecordResponse(ctx context.Context, requestID, listField string, responderID primitive.ObjectID, responseStatus, rejectionReason string) (bool, error) {
	return false, nil
}

func (emptyEmergencyStore) AcknowledgeIfPending(ctx context.Context, requestID string) (bool, error) {
	return false, nil
}

func (emptyEmergencyStore) Stats(ctx context.Context) (*models.EmergencyStatsResponse, error) {
	return &models.EmergencyStatsResponse{}, nil
}

func newEmergencyTestRouter() (*gin.Engine, *utils.JWTService) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")

	jwtService := utils.NewJWTService("test-secret")
	auth := middleware.NewAuthMiddleware(jwtService)
	limiter := middleware.NewRateLimiter(nil, 100, time.Minute)

	emergencyService := services.NewEmergencyService(emptyEmergencyStore{}, nil, nil, nil, nil)
	SetupEmergencyRoutes(api, controllers.NewEmergencyController(emergencyService), auth, limiter)

	return router, jwtService
}

func accessTokenFor(t *testing.T, jwtService *utils.JWTService, role string) string {
	t.Helper()
	pair, err := jwtService.GenerateTokenPair(primitive.NewObjectID().Hex(), role)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRequestDetailAuthorization(t *testing.T) {
	router, jwtService := newEmergencyTestRouter()
	detailPath := "/api/emergency/requests/" + primitive.NewObjectID().Hex()

	t.Run("requires authentication", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, detailPath, nil)
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("readable by any authenticated role", func(t *testing.T) {
		for _, role := range []string{utils.RoleVolunteer, utils.RoleOrganization, utils.RoleUser, utils.RoleAdmin} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, detailPath, nil)
			req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, role))
			router.ServeHTTP(rec, req)

			// Past the authorization layer; the empty store yields 404.
			assert.Equal(t, http.StatusNotFound, rec.Code, "role %s", role)
		}
	})

	t.Run("request list stays admin-only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/emergency/requests", nil)
		req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, utils.RoleVolunteer))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("status update stays admin-only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, detailPath+"/status", nil)
		req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, jwtService, utils.RoleOrganization))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
