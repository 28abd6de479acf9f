package campaign

import (
	"errors"
	"net/http"

	useCaseCampaign "go-wa-dispatch/src/application/usecases/campaign"
	useCaseSettings "go-wa-dispatch/src/application/usecases/settings"
	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/rest/controllers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ICampaignController interface {
	Start(ctx *gin.Context)
	Stop(ctx *gin.Context)
	Status(ctx *gin.Context)
}

type CampaignController struct {
	settingsUseCase useCaseSettings.ISettingsUseCase
	campaignRunner  useCaseCampaign.ICampaignRunner
	Logger          *logger.Logger
}

func NewCampaignController(
	settingsUseCase useCaseSettings.ISettingsUseCase,
	campaignRunner useCaseCampaign.ICampaignRunner,
	loggerInstance *logger.Logger,
) ICampaignController {
	return &CampaignController{
		settingsUseCase: settingsUseCase,
		campaignRunner:  campaignRunner,
		Logger:          loggerInstance,
	}
}

// Start only raises the campaign flag. The coordinator picks it up on its
// next tick.
func (c *CampaignController) Start(ctx *gin.Context) {
	cfg, err := c.settingsUseCase.LoadConfiguration()
	if err != nil {
		c.Logger.Error("Error loading configuration for campaign start", zap.Error(err))
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.RepositoryError))
		return
	}
	tpl := cfg.Template
	if len(tpl.Greetings) == 0 || tpl.MainMessage == "" || len(tpl.Farewells) == 0 {
		c.Logger.Warn("Campaign start rejected, templates incomplete",
			zap.Int("greetings", len(tpl.Greetings)),
			zap.Bool("mainMessage", tpl.MainMessage != ""),
			zap.Int("farewells", len(tpl.Farewells)))
		_ = ctx.Error(domainErrors.NewAppError(
			errors.New("greetings, main message and farewells must be configured"),
			domainErrors.ValidationError))
		return
	}

	if err := c.settingsUseCase.RequestCampaign(); err != nil {
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.RepositoryError))
		return
	}
	c.Logger.Info("Campaign requested", zap.Bool("testMode", cfg.TestMode))
	ctx.JSON(http.StatusAccepted, controllers.MessageResponse{Message: "Campaign requested"})
}

func (c *CampaignController) Stop(ctx *gin.Context) {
	if err := c.settingsUseCase.RequestStop(); err != nil {
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.RepositoryError))
		return
	}
	c.Logger.Info("Campaign stop requested")
	ctx.JSON(http.StatusAccepted, controllers.MessageResponse{Message: "Stop requested"})
}

func (c *CampaignController) Status(ctx *gin.Context) {
	requested, err := c.settingsUseCase.CampaignRequested()
	if err != nil {
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.RepositoryError))
		return
	}
	stopRequested, err := c.settingsUseCase.StopRequested()
	if err != nil {
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.RepositoryError))
		return
	}
	ctx.JSON(http.StatusOK, StatusResponse{
		CampaignRequested: requested,
		StopRequested:     stopRequested,
		Running:           c.campaignRunner.IsRunning(),
	})
}
