package routes

import (
	"go-wa-dispatch/src/infrastructure/rest/controllers/queue"

	"github.com/gin-gonic/gin"
)

func QueueRoutes(router *gin.RouterGroup, controller queue.IQueueController, auth gin.HandlerFunc) {
	q := router.Group("/queue")
	q.Use(auth)
	{
		q.POST("", controller.Enqueue)
		q.GET("/failed", controller.ListFailed)
		q.POST("/:id/resubmit", controller.Resubmit)
		q.DELETE("/:id", controller.Delete)
	}

	contacts := router.Group("/contacts")
	contacts.Use(auth)
	{
		contacts.POST("/:id/messages", controller.EnqueueForContact)
	}
}
