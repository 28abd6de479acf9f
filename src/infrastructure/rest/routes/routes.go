package routes

import (
	"net/http"

	"go-wa-dispatch/src/infrastructure/di"
	"go-wa-dispatch/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func ApplicationRouter(router *gin.Engine, appContext *di.ApplicationContext) {
	v1 := router.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"message":    "Service is running",
			"dispatcher": appContext.Coordinator.Running(),
		})
	})

	auth := middlewares.AuthJWTMiddleware(appContext.JWTService, appContext.Logger)

	AuthRoutes(v1, appContext.AuthController)
	CampaignRoutes(v1, appContext.CampaignController, auth)
	QueueRoutes(v1, appContext.QueueController, auth)
	SettingsRoutes(v1, appContext.SettingsController, auth)
	MessageRoutes(v1, appContext.MessagesController, auth)
	WhatsAppRoutes(v1, appContext.WhatsAppController, auth)
}
