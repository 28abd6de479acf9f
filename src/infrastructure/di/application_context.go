package di

import (
	"context"
	"os"
	"time"

	authUseCase "go-wa-dispatch/src/application/usecases/auth"
	campaignUseCase "go-wa-dispatch/src/application/usecases/campaign"
	"go-wa-dispatch/src/application/usecases/composer"
	inboundUseCase "go-wa-dispatch/src/application/usecases/inbound"
	messageUseCase "go-wa-dispatch/src/application/usecases/message"
	queueUseCase "go-wa-dispatch/src/application/usecases/queue"
	settingsUseCase "go-wa-dispatch/src/application/usecases/settings"
	"go-wa-dispatch/src/domain/common"
	domainContact "go-wa-dispatch/src/domain/contact"
	domainMessage "go-wa-dispatch/src/domain/message"
	domainQueue "go-wa-dispatch/src/domain/queue"
	domainSettings "go-wa-dispatch/src/domain/settings"
	"go-wa-dispatch/src/domain/transport"
	"go-wa-dispatch/src/infrastructure/alerting"
	"go-wa-dispatch/src/infrastructure/helper"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/media"
	"go-wa-dispatch/src/infrastructure/messaging"
	"go-wa-dispatch/src/infrastructure/repository/database"
	contactRepo "go-wa-dispatch/src/infrastructure/repository/database/contact"
	messageLogRepo "go-wa-dispatch/src/infrastructure/repository/database/messagelog"
	queueRepo "go-wa-dispatch/src/infrastructure/repository/database/queue"
	settingsRepo "go-wa-dispatch/src/infrastructure/repository/database/settings"
	whatsappClient "go-wa-dispatch/src/infrastructure/repository/whatsapp-client"
	authController "go-wa-dispatch/src/infrastructure/rest/controllers/auth"
	campaignController "go-wa-dispatch/src/infrastructure/rest/controllers/campaign"
	messagesController "go-wa-dispatch/src/infrastructure/rest/controllers/messages"
	queueController "go-wa-dispatch/src/infrastructure/rest/controllers/queue"
	settingsController "go-wa-dispatch/src/infrastructure/rest/controllers/settings"
	whatsappController "go-wa-dispatch/src/infrastructure/rest/controllers/whatsapp"
	"go-wa-dispatch/src/infrastructure/security"
	"go-wa-dispatch/src/infrastructure/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplicationContext holds all application dependencies and services
type ApplicationContext struct {
	DB                 *gorm.DB
	Logger             *logger.Logger
	WhatsApp           *whatsappClient.Client
	Coordinator        *messaging.Coordinator
	Alerts             alerting.IReporter
	JWTService         security.IJWTService
	CommonService      common.CommonService
	SettingsUseCase    settingsUseCase.ISettingsUseCase
	QueueUseCase       queueUseCase.IQueueUseCase
	CampaignRunner     campaignUseCase.ICampaignRunner
	InboundUseCase     inboundUseCase.IInboundUseCase
	AuthUseCase        authUseCase.IAuthUseCase
	MessageUseCase     messageUseCase.IMessageUseCase
	AuthController     authController.IAuthController
	CampaignController campaignController.ICampaignController
	QueueController    queueController.IQueueController
	SettingsController settingsController.ISettingsController
	MessagesController messagesController.IMessagesController
	WhatsAppController whatsappController.IWhatsAppController
}

// SetupDependencies creates a new application context with all dependencies
func SetupDependencies(loggerInstance *logger.Logger) (*ApplicationContext, error) {
	db, err := database.InitDB(loggerInstance)
	if err != nil {
		return nil, err
	}

	alerts, err := alerting.NewReporter(alerting.Config{
		DSN:         utils.GetEnv("SENTRY_DSN", ""),
		Environment: utils.GetEnv("GO_ENV", "development"),
		Release:     utils.GetEnv("APP_RELEASE", ""),
	}, loggerInstance)
	if err != nil {
		return nil, err
	}

	contacts := contactRepo.NewContactRepository(db, loggerInstance)
	messageLog := messageLogRepo.NewMessageLogRepository(db, loggerInstance)
	outgoingQueue := queueRepo.NewQueueRepository(db, loggerInstance)
	settingsUC := settingsUseCase.NewSettingsUseCase(settingsRepo.NewSettingsRepository(db, loggerInstance), loggerInstance)

	if err := seedSettings(settingsUC, utils.GetEnv("SETTINGS_SEED_FILE", ""), loggerInstance); err != nil {
		return nil, err
	}

	wa, err := whatsappClient.NewWhatsAppClient(context.Background(), whatsappClient.Config{
		StoreDialect: utils.GetEnv("WA_STORE_DIALECT", whatsappClient.DialectSQLite),
		StoreDSN:     utils.GetEnv("WA_STORE_DSN", ""),
		LogLevel:     utils.GetEnv("WA_LOG_LEVEL", "WARN"),
		QRPNGPath:    utils.GetEnv("WA_QR_PNG_PATH", ""),
	}, loggerInstance)
	if err != nil {
		return nil, err
	}

	var mediaStore inboundUseCase.IMediaStore
	if dir := utils.GetEnv("MEDIA_DIR", ""); dir != "" {
		store, err := media.NewStore(dir, loggerInstance)
		if err != nil {
			return nil, err
		}
		mediaStore = store
	}

	jwtService := security.NewJWTService(loadJWTConfig())
	admin := authUseCase.AdminCredentials{
		Username:     utils.GetEnv("ADMIN_USERNAME", ""),
		PasswordHash: utils.GetEnv("ADMIN_PASSWORD_HASH", ""),
	}
	if admin.Username == "" || admin.PasswordHash == "" {
		loggerInstance.Warn("ADMIN_USERNAME or ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	appContext := buildContext(dependencies{
		settings:   settingsUC,
		contacts:   contacts,
		messageLog: messageLog,
		queue:      outgoingQueue,
		sender:     wa,
		qr:         wa,
		media:      mediaStore,
		alerts:     alerts,
		jwtService: jwtService,
		admin:      admin,
	}, loggerInstance)
	appContext.DB = db
	appContext.WhatsApp = wa

	wa.SetListener(NewDispatchListener(settingsUC, appContext.Coordinator, appContext.InboundUseCase, alerts, os.Exit, loggerInstance))
	return appContext, nil
}

type dependencies struct {
	settings   settingsUseCase.ISettingsUseCase
	contacts   domainContact.IContactService
	messageLog domainMessage.IMessageLogService
	queue      domainQueue.IOutgoingQueueService
	sender     transport.ISender
	qr         whatsappController.IQRProvider
	media      inboundUseCase.IMediaStore
	alerts     alerting.IReporter
	jwtService security.IJWTService
	admin      authUseCase.AdminCredentials
}

// buildContext wires use cases and controllers on top of already built
// stores and transport. Campaign and queue sends share one SerialSender.
func buildContext(deps dependencies, loggerInstance *logger.Logger) *ApplicationContext {
	sender := messaging.NewSerialSender(deps.sender)
	commonService := common.NewCommonService(helper.NewValidator(loggerInstance))

	runner := campaignUseCase.NewRunner(deps.settings, deps.contacts, deps.messageLog, sender, composer.NewComposer(), deps.alerts, loggerInstance)
	queueUC := queueUseCase.NewQueueUseCase(deps.queue, deps.contacts, deps.messageLog, sender, deps.alerts, loggerInstance)
	inboundUC := inboundUseCase.NewInboundUseCase(deps.settings, deps.contacts, deps.messageLog, deps.media, loggerInstance)
	authUC := authUseCase.NewAuthUseCase(deps.admin, deps.jwtService, loggerInstance)
	messageUC := messageUseCase.NewMessageUseCase(deps.messageLog, loggerInstance)

	return &ApplicationContext{
		Logger:             loggerInstance,
		Coordinator:        messaging.NewCoordinator(runner, queueUC, loggerInstance),
		Alerts:             deps.alerts,
		JWTService:         deps.jwtService,
		CommonService:      commonService,
		SettingsUseCase:    deps.settings,
		QueueUseCase:       queueUC,
		CampaignRunner:     runner,
		InboundUseCase:     inboundUC,
		AuthUseCase:        authUC,
		MessageUseCase:     messageUC,
		AuthController:     authController.NewAuthController(authUC, loggerInstance),
		CampaignController: campaignController.NewCampaignController(deps.settings, runner, loggerInstance),
		QueueController:    queueController.NewQueueController(commonService, queueUC, loggerInstance),
		SettingsController: settingsController.NewSettingsController(deps.settings, loggerInstance),
		MessagesController: messagesController.NewMessagesController(messageUC, loggerInstance),
		WhatsAppController: whatsappController.NewWhatsAppController(deps.qr, loggerInstance),
	}
}

func seedSettings(settingsUC settingsUseCase.ISettingsUseCase, path string, loggerInstance *logger.Logger) error {
	if path == "" {
		return nil
	}
	values, err := database.LoadSettingsSeed(path)
	if err != nil {
		loggerInstance.Error("Error reading settings seed file", zap.String("path", path), zap.Error(err))
		return err
	}
	inserted, err := settingsUC.Seed(values)
	if err != nil {
		return err
	}
	loggerInstance.Info("Settings seeded", zap.String("path", path), zap.Int("inserted", inserted))
	return nil
}

func loadJWTConfig() security.JWTConfig {
	return security.JWTConfig{
		AccessSecret:  utils.GetEnv("JWT_ACCESS_SECRET_KEY", ""),
		RefreshSecret: utils.GetEnv("JWT_REFRESH_SECRET_KEY", ""),
		AccessTTL:     time.Duration(utils.GetIntEnv("JWT_ACCESS_TIME_MINUTE", 60)) * time.Minute,
		RefreshTTL:    time.Duration(utils.GetIntEnv("JWT_REFRESH_TIME_HOUR", 24)) * time.Hour,
	}
}

// NewTestApplicationContext creates an application context for testing with mocked dependencies
func NewTestApplicationContext(
	settingsRepository domainSettings.ISettingsService,
	contacts domainContact.IContactService,
	messageLog domainMessage.IMessageLogService,
	outgoingQueue domainQueue.IOutgoingQueueService,
	sender transport.ISender,
	qr whatsappController.IQRProvider,
	jwtService security.IJWTService,
	admin authUseCase.AdminCredentials,
	loggerInstance *logger.Logger,
) *ApplicationContext {
	return buildContext(dependencies{
		settings:   settingsUseCase.NewSettingsUseCase(settingsRepository, loggerInstance),
		contacts:   contacts,
		messageLog: messageLog,
		queue:      outgoingQueue,
		sender:     sender,
		qr:         qr,
		alerts:     alerting.NopReporter{},
		jwtService: jwtService,
		admin:      admin,
	}, loggerInstance)
}
