package routes

import (
	"go-wa-dispatch/src/infrastructure/rest/controllers/messages"
	"go-wa-dispatch/src/infrastructure/rest/controllers/settings"
	"go-wa-dispatch/src/infrastructure/rest/controllers/whatsapp"

	"github.com/gin-gonic/gin"
)

func SettingsRoutes(router *gin.RouterGroup, controller settings.ISettingsController, auth gin.HandlerFunc) {
	s := router.Group("/settings")
	s.Use(auth)
	{
		s.GET("", controller.GetSettings)
		s.PUT("", controller.UpdateSettings)
	}
}

func MessageRoutes(router *gin.RouterGroup, controller messages.IMessagesController, auth gin.HandlerFunc) {
	m := router.Group("/messages")
	m.Use(auth)
	{
		m.GET("", controller.ListRecent)
		m.DELETE("/:id", controller.Delete)
	}
}

func WhatsAppRoutes(router *gin.RouterGroup, controller whatsapp.IWhatsAppController, auth gin.HandlerFunc) {
	w := router.Group("/whatsapp")
	w.Use(auth)
	{
		w.GET("/qrcode", controller.GetQrCode)
	}
}
