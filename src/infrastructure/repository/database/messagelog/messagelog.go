package messagelog

import (
	"time"

	domainErrors "go-wa-dispatch/src/domain/errors"
	domainMessage "go-wa-dispatch/src/domain/message"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MessageLog struct {
	ID          int       `gorm:"primaryKey"`
	ContactID   *int      `gorm:"column:contact_id;index"`
	Phone       string    `gorm:"column:phone;size:32;index"`
	MessageType string    `gorm:"column:message_type;size:32;default:text"`
	MessageBody string    `gorm:"column:message_body;type:text"`
	Direction   string    `gorm:"column:direction;size:16"`
	Status      string    `gorm:"column:status;size:16"`
	Timestamp   time.Time `gorm:"column:timestamp;index"`
}

func (MessageLog) TableName() string {
	return "messages"
}

type Repository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewMessageLogRepository(db *gorm.DB, loggerInstance *logger.Logger) domainMessage.IMessageLogService {
	return &Repository{DB: db, Logger: loggerInstance}
}

// Append stores the entry and returns its id. A zero timestamp is stamped
// with the current time.
func (r *Repository) Append(entry *domainMessage.LogEntry) (int, error) {
	row := fromDomainMapper(entry)
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now()
	}
	if err := r.DB.Create(row).Error; err != nil {
		r.Logger.Error("Error appending message log",
			zap.String("phone", entry.Phone),
			zap.String("direction", string(entry.Direction)),
			zap.Error(err))
		return 0, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return row.ID, nil
}

func (r *Repository) ListRecent(limit int) (*[]domainMessage.LogEntry, error) {
	var rows []MessageLog
	if err := r.DB.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		r.Logger.Error("Error listing message log", zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	entries := make([]domainMessage.LogEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].toDomainMapper()
	}
	return &entries, nil
}

func (r *Repository) Delete(id int) error {
	tx := r.DB.Delete(&MessageLog{}, id)
	if tx.Error != nil {
		r.Logger.Error("Error deleting message log entry", zap.Int("id", id), zap.Error(tx.Error))
		return domainErrors.NewAppError(tx.Error, domainErrors.RepositoryError)
	}
	if tx.RowsAffected == 0 {
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	return nil
}

func (m *MessageLog) toDomainMapper() *domainMessage.LogEntry {
	return &domainMessage.LogEntry{
		ID:          m.ID,
		ContactID:   m.ContactID,
		Phone:       m.Phone,
		MessageType: m.MessageType,
		MessageBody: m.MessageBody,
		Direction:   domainMessage.Direction(m.Direction),
		Status:      domainMessage.Status(m.Status),
		Timestamp:   m.Timestamp,
	}
}

func fromDomainMapper(e *domainMessage.LogEntry) *MessageLog {
	return &MessageLog{
		ID:          e.ID,
		ContactID:   e.ContactID,
		Phone:       e.Phone,
		MessageType: e.MessageType,
		MessageBody: e.MessageBody,
		Direction:   string(e.Direction),
		Status:      string(e.Status),
		Timestamp:   e.Timestamp,
	}
}
