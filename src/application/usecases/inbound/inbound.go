package inbound

import (
	"time"

	settingsUseCase "go-wa-dispatch/src/application/usecases/settings"
	domainContact "go-wa-dispatch/src/domain/contact"
	domainMessage "go-wa-dispatch/src/domain/message"
	"go-wa-dispatch/src/domain/transport"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
)

// IMediaStore persists downloaded attachments and returns where they went.
type IMediaStore interface {
	Save(messageID string, data []byte) (string, error)
}

// IInboundUseCase records messages received on the transport.
type IInboundUseCase interface {
	Handle(msg transport.InboundMessage) error
}

type InboundUseCase struct {
	Settings   settingsUseCase.ISettingsUseCase
	Contacts   domainContact.IContactService
	MessageLog domainMessage.IMessageLogService
	Media      IMediaStore
	Logger     *logger.Logger
}

func NewInboundUseCase(
	settings settingsUseCase.ISettingsUseCase,
	contacts domainContact.IContactService,
	messageLog domainMessage.IMessageLogService,
	media IMediaStore,
	loggerInstance *logger.Logger,
) IInboundUseCase {
	return &InboundUseCase{
		Settings:   settings,
		Contacts:   contacts,
		MessageLog: messageLog,
		Media:      media,
		Logger:     loggerInstance,
	}
}

// Handle records a received message in the message log, linked to the sender's
// contact when one exists.
func (i *InboundUseCase) Handle(msg transport.InboundMessage) error {
	countryCode := ""
	if cfg, err := i.Settings.LoadConfiguration(); err != nil {
		i.Logger.Warn("Could not load configuration for inbound message, using raw sender", zap.Error(err))
	} else {
		countryCode = cfg.CountryCode
	}

	phone := domainContact.FormatForStorage(msg.From, countryCode)
	if phone == "" {
		i.Logger.Warn("Ignoring inbound message without a sender phone", zap.String("messageID", msg.ID))
		return nil
	}

	messageType, body := BuildBody(msg)
	i.Logger.Info("Received message",
		zap.String("phone", phone),
		zap.String("messageID", msg.ID),
		zap.String("type", messageType))

	if i.Media != nil && len(msg.Media) > 0 {
		if path, err := i.Media.Save(msg.ID, msg.Media); err != nil {
			i.Logger.Warn("Could not store inbound media", zap.String("messageID", msg.ID), zap.Error(err))
		} else {
			i.Logger.Debug("Inbound media stored", zap.String("messageID", msg.ID), zap.String("path", path))
		}
	}

	contact, err := i.Contacts.FindByPhone(phone)
	if err != nil {
		// Handled as an unknown sender.
		i.Logger.Error("Error looking up sender", zap.String("phone", phone), zap.Error(err))
		contact = nil
	}

	if contact != nil {
		return i.append(contact.ID, phone, messageType, body)
	}

	logUnknown, err := i.Settings.LogUnknownSenders()
	if err != nil {
		i.Logger.Warn("Could not read log_unknown_senders, logging message anyway", zap.Error(err))
		logUnknown = true
	}
	if !logUnknown {
		i.Logger.Info("Ignoring message from unknown sender", zap.String("phone", phone))
		return nil
	}
	return i.append(nil, phone, messageType, body)
}

func (i *InboundUseCase) append(contactID *int, phone, messageType, body string) error {
	_, err := i.MessageLog.Append(&domainMessage.LogEntry{
		ContactID:   contactID,
		Phone:       phone,
		MessageType: messageType,
		MessageBody: body,
		Direction:   domainMessage.Inbound,
		Status:      domainMessage.StatusReceived,
		Timestamp:   time.Now(),
	})
	if err != nil {
		i.Logger.Error("Error writing inbound message log", zap.String("phone", phone), zap.Error(err))
	}
	return err
}
