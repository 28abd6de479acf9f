package queue

import (
	"errors"
	"net/http"

	useCaseQueue "go-wa-dispatch/src/application/usecases/queue"
	"go-wa-dispatch/src/domain/common"
	domainErrors "go-wa-dispatch/src/domain/errors"
	domainQueue "go-wa-dispatch/src/domain/queue"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/rest/controllers"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IQueueController interface {
	Enqueue(ctx *gin.Context)
	EnqueueForContact(ctx *gin.Context)
	ListFailed(ctx *gin.Context)
	Resubmit(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type QueueController struct {
	commonService common.CommonService
	queueUseCase  useCaseQueue.IQueueUseCase
	Logger        *logger.Logger
}

func NewQueueController(
	commonService common.CommonService,
	queueUseCase useCaseQueue.IQueueUseCase,
	loggerInstance *logger.Logger,
) IQueueController {
	return &QueueController{
		commonService: commonService,
		queueUseCase:  queueUseCase,
		Logger:        loggerInstance,
	}
}

// bind reports false after it has already answered the request.
func (c *QueueController) bind(ctx *gin.Context, request interface{}) bool {
	err := controllers.BindJSON(ctx, request)
	if err == nil {
		return true
	}
	c.Logger.Error("Couldn't process request - invalid request", zap.Error(err))
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.commonService.AppendValidationErrors(ctx, ve, request)
		return false
	}
	_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.ValidationError))
	return false
}

func (c *QueueController) Enqueue(ctx *gin.Context) {
	var request EnqueueRequest
	if !c.bind(ctx, &request) {
		return
	}

	id, err := c.queueUseCase.Enqueue(request.ContactID, request.Phone, request.MessageBody)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	c.Logger.Info("Message queued", zap.Int("id", id))
	ctx.JSON(http.StatusCreated, EnqueueResponse{ID: id, Status: string(domainQueue.StatusPending)})
}

func (c *QueueController) EnqueueForContact(ctx *gin.Context) {
	contactID, err := controllers.ParamID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	var request ContactMessageRequest
	if !c.bind(ctx, &request) {
		return
	}

	id, err := c.queueUseCase.EnqueueForContact(contactID, request.MessageBody)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	c.Logger.Info("Message queued for contact", zap.Int("id", id), zap.Int("contactId", contactID))
	ctx.JSON(http.StatusCreated, EnqueueResponse{ID: id, Status: string(domainQueue.StatusPending)})
}

func (c *QueueController) ListFailed(ctx *gin.Context) {
	items, err := c.queueUseCase.ListFailed()
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, toItemResponses(items))
}

func (c *QueueController) Resubmit(ctx *gin.Context) {
	id, err := controllers.ParamID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	if err := c.queueUseCase.Resubmit(id); err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, EnqueueResponse{ID: id, Status: string(domainQueue.StatusPending)})
}

func (c *QueueController) Delete(ctx *gin.Context) {
	id, err := controllers.ParamID(ctx, "id")
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	if err := c.queueUseCase.Delete(id); err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, controllers.MessageResponse{Message: "Queue item deleted"})
}
