package message

import (
	domainErrors "go-wa-dispatch/src/domain/errors"
	domainMessage "go-wa-dispatch/src/domain/message"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// IMessageUseCase exposes the message log to operators.
type IMessageUseCase interface {
	ListRecent(limit int) (*[]domainMessage.LogEntry, error)
	Delete(id int) error
}

type MessageUseCase struct {
	MessageLogRepository domainMessage.IMessageLogService
	Logger               *logger.Logger
}

func NewMessageUseCase(messageLogRepository domainMessage.IMessageLogService, loggerInstance *logger.Logger) IMessageUseCase {
	return &MessageUseCase{
		MessageLogRepository: messageLogRepository,
		Logger:               loggerInstance,
	}
}

// ListRecent returns the newest entries first. Out of range limits are
// clamped.
func (m *MessageUseCase) ListRecent(limit int) (*[]domainMessage.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	entries, err := m.MessageLogRepository.ListRecent(limit)
	if err != nil {
		m.Logger.Error("Error listing message log", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (m *MessageUseCase) Delete(id int) error {
	if id <= 0 {
		return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
	}
	if err := m.MessageLogRepository.Delete(id); err != nil {
		m.Logger.Error("Error deleting message log entry", zap.Int("id", id), zap.Error(err))
		return err
	}
	m.Logger.Info("Message log entry deleted", zap.Int("id", id))
	return nil
}
