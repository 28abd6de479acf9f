package messages

import (
	"net/http"
	"strconv"
	"time"

	useCaseMessage "go-wa-dispatch/src/application/usecases/message"
	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/rest/controllers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IMessagesController interface {
	ListRecent(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type MessagesController struct {
	messageUseCase useCaseMessage.IMessageUseCase
	Logger         *logger.Logger
}

func NewMessagesController(messageUseCase useCaseMessage.IMessageUseCase, loggerInstance *logger.Logger) IMessagesController {
	return &MessagesController{
		messageUseCase: messageUseCase,
		Logger:         loggerInstance,
	}
}

type LogEntryResponse struct {
	ID          int       `json:"id"`
	ContactID   *int      `json:"contactId,omitempty"`
	Phone       string    `json:"phone"`
	MessageType string    `json:"messageType"`
	MessageBody string    `json:"messageBody"`
	Direction   string    `json:"direction"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

func (c *MessagesController) ListRecent(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.Logger.Warn("Invalid limit parameter", zap.String("limit", raw))
			_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.ValidationError))
			return
		}
		limit = parsed
	}

	entries, err := c.messageUseCase.ListRecent(limit)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	out := make([]LogEntryResponse, 0, len(*entries))
	for _, e := range *entries {
		out = append(out, LogEntryResponse{
			ID:          e.ID,
			ContactID:   e.ContactID,
			Phone:       e.Phone,
			MessageType: e.MessageType,
			MessageBody: e.MessageBody,
			Direction:   string(e.Direction),
			Status:      string(e.Status),
			Timestamp:   e.Timestamp,
		})
	}
	ctx.JSON(http.StatusOK, out)
}

func (c *MessagesController) Delete(ctx *gin.Context) {
	id, err := controllers.ParamID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	if err := c.messageUseCase.Delete(id); err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, controllers.MessageResponse{Message: "Message deleted"})
}
