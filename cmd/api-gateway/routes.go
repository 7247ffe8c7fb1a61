package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/handler"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-api/pkg/middleware/requestid"
)

type routerDeps struct {
	tokens     middleware.TokenValidator
	metrics    *service.MetricsService
	interviews *handler.InterviewHandler
	health     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens))

	coordinatorOnly := middleware.RequireRoles(models.RoleCoordinator)

	interviews := api.Group("/interviews")
	interviews.POST("", middleware.RequireRoles(models.RoleRecruiter, models.RoleCoordinator), deps.interviews.Schedule)
	interviews.GET("/pending", coordinatorOnly, deps.interviews.ListPending)
	interviews.GET("/mine", middleware.RequireRoles(models.RoleRecruiter, models.RoleStudent, models.RoleCoordinator), deps.interviews.ListMine)
	interviews.GET("/export", coordinatorOnly, deps.interviews.Export)
	interviews.POST("/:id/approve", coordinatorOnly, deps.interviews.Approve)
	interviews.PUT("/:id/meeting-reference", coordinatorOnly, deps.interviews.AssignMeetingReference)

	api.POST("/internal/reminders/run", coordinatorOnly, deps.interviews.RunReminders)

	return r
}
