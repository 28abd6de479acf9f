package whatsapp

import (
	"net/http"

	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// IQRProvider exposes the pairing code currently waiting to be scanned.
type IQRProvider interface {
	LatestQR() ([]byte, bool)
}

type IWhatsAppController interface {
	GetQrCode(ctx *gin.Context)
}

type WhatsAppController struct {
	qrProvider IQRProvider
	Logger     *logger.Logger
}

func NewWhatsAppController(qrProvider IQRProvider, loggerInstance *logger.Logger) IWhatsAppController {
	return &WhatsAppController{
		qrProvider: qrProvider,
		Logger:     loggerInstance,
	}
}

func (c *WhatsAppController) GetQrCode(ctx *gin.Context) {
	png, ok := c.qrProvider.LatestQR()
	if !ok {
		_ = ctx.Error(domainErrors.NewAppErrorWithType(domainErrors.NotFound))
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}
