package routes

import (
	"go-wa-dispatch/src/infrastructure/rest/controllers/campaign"

	"github.com/gin-gonic/gin"
)

func CampaignRoutes(router *gin.RouterGroup, controller campaign.ICampaignController, auth gin.HandlerFunc) {
	c := router.Group("/campaign")
	c.Use(auth)
	{
		c.POST("/start", controller.Start)
		c.POST("/stop", controller.Stop)
		c.GET("/status", controller.Status)
	}
}
