package di

import (
	"sync"
	"time"

	inboundUseCase "go-wa-dispatch/src/application/usecases/inbound"
	settingsUseCase "go-wa-dispatch/src/application/usecases/settings"
	domainSettings "go-wa-dispatch/src/domain/settings"
	"go-wa-dispatch/src/domain/transport"
	"go-wa-dispatch/src/infrastructure/alerting"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
)

type dispatcher interface {
	Start(cfg *domainSettings.RuntimeConfiguration)
	Shutdown()
}

// DispatchListener connects transport lifecycle events to the coordinator
// and the inbound handler.
type DispatchListener struct {
	settings    settingsUseCase.ISettingsUseCase
	coordinator dispatcher
	inbound     inboundUseCase.IInboundUseCase
	alerts      alerting.IReporter
	exit        func(code int)
	Logger      *logger.Logger

	lost sync.Once
}

func NewDispatchListener(
	settings settingsUseCase.ISettingsUseCase,
	coordinator dispatcher,
	inbound inboundUseCase.IInboundUseCase,
	alerts alerting.IReporter,
	exit func(code int),
	loggerInstance *logger.Logger,
) transport.Listener {
	return &DispatchListener{
		settings:    settings,
		coordinator: coordinator,
		inbound:     inbound,
		alerts:      alerts,
		exit:        exit,
		Logger:      loggerInstance,
	}
}

// OnReady starts the timers with the configuration as stored right now.
func (l *DispatchListener) OnReady() {
	l.Logger.Info("WhatsApp client ready")
	cfg, err := l.settings.LoadConfiguration()
	if err != nil {
		l.Logger.Error("Error loading configuration, starting coordinator with defaults", zap.Error(err))
		cfg = &domainSettings.RuntimeConfiguration{}
	}
	l.coordinator.Start(cfg)
}

func (l *DispatchListener) OnQR(code string) {
	l.Logger.Info("WhatsApp pairing code received, scan it to link the device")
}

func (l *DispatchListener) OnInbound(msg transport.InboundMessage) {
	if err := l.inbound.Handle(msg); err != nil {
		l.Logger.Error("Error handling inbound message", zap.String("messageId", msg.ID), zap.Error(err))
	}
}

func (l *DispatchListener) OnAuthFailure(reason string) {
	l.terminate("authentication failure", reason)
}

func (l *DispatchListener) OnDisconnected(reason string) {
	l.terminate("disconnected", reason)
}

// terminate runs once. The process supervisor is expected to restart us.
func (l *DispatchListener) terminate(event string, reason string) {
	l.lost.Do(func() {
		l.Logger.Error("WhatsApp session lost, exiting", zap.String("event", event), zap.String("reason", reason))
		l.coordinator.Shutdown()
		l.alerts.Flush(2 * time.Second)
		l.exit(1)
	})
}
