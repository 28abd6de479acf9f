package queue

import (
	"time"

	domainErrors "go-wa-dispatch/src/domain/errors"
	domainQueue "go-wa-dispatch/src/domain/queue"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OutgoingMessage struct {
	ID           int        `gorm:"primaryKey"`
	ContactID    *int       `gorm:"column:contact_id;index"`
	PhoneNumber  string     `gorm:"column:phone_number;size:32;not null"`
	MessageBody  string     `gorm:"column:message_body;type:text;not null"`
	Status       string     `gorm:"column:status;size:16;not null;default:PENDING;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	ProcessedAt  *time.Time `gorm:"column:processed_at"`
	ErrorMessage *string    `gorm:"column:error_message;type:text"`
}

func (OutgoingMessage) TableName() string {
	return "outgoing_queue"
}

type Repository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewQueueRepository(db *gorm.DB, loggerInstance *logger.Logger) domainQueue.IOutgoingQueueService {
	return &Repository{DB: db, Logger: loggerInstance}
}

func (r *Repository) Enqueue(contactID *int, phone string, body string) (int, error) {
	row := &OutgoingMessage{
		ContactID:   contactID,
		PhoneNumber: phone,
		MessageBody: body,
		Status:      string(domainQueue.StatusPending),
	}
	if err := r.DB.Create(row).Error; err != nil {
		r.Logger.Error("Error enqueuing message", zap.String("phone", phone), zap.Error(err))
		return 0, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	r.Logger.Info("Message enqueued", zap.Int("id", row.ID), zap.String("phone", phone))
	return row.ID, nil
}

// FetchOldestPending returns nil when nothing is pending.
func (r *Repository) FetchOldestPending() (*domainQueue.Item, error) {
	var rows []OutgoingMessage
	err := r.DB.
		Where("status = ?", string(domainQueue.StatusPending)).
		Order("created_at ASC").
		Order("id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		r.Logger.Error("Error fetching pending message", zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomainMapper(), nil
}

// Claim moves a PENDING item to SENDING. It reports false when another
// worker got there first.
func (r *Repository) Claim(id int) (bool, error) {
	tx := r.DB.Model(&OutgoingMessage{}).
		Where("id = ? AND status = ?", id, string(domainQueue.StatusPending)).
		Update("status", string(domainQueue.StatusSending))
	if tx.Error != nil {
		r.Logger.Error("Error claiming message", zap.Int("id", id), zap.Error(tx.Error))
		return false, domainErrors.NewAppError(tx.Error, domainErrors.RepositoryError)
	}
	return tx.RowsAffected == 1, nil
}

func (r *Repository) SetStatus(id int, status domainQueue.Status, errorMessage *string) error {
	now := time.Now()
	err := r.DB.Model(&OutgoingMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        string(status),
			"processed_at":  &now,
			"error_message": errorMessage,
		}).Error
	if err != nil {
		r.Logger.Error("Error updating message status", zap.Int("id", id), zap.String("status", string(status)), zap.Error(err))
		return domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return nil
}

func (r *Repository) Delete(id int) (bool, error) {
	tx := r.DB.Delete(&OutgoingMessage{}, id)
	if tx.Error != nil {
		r.Logger.Error("Error deleting queued message", zap.Int("id", id), zap.Error(tx.Error))
		return false, domainErrors.NewAppError(tx.Error, domainErrors.RepositoryError)
	}
	return tx.RowsAffected > 0, nil
}

func (r *Repository) ListByStatus(status domainQueue.Status) (*[]domainQueue.Item, error) {
	var rows []OutgoingMessage
	if err := r.DB.Where("status = ?", string(status)).Order("id ASC").Find(&rows).Error; err != nil {
		r.Logger.Error("Error listing queued messages", zap.String("status", string(status)), zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	items := make([]domainQueue.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].toDomainMapper()
	}
	return &items, nil
}

// Resubmit returns a FAILED or SENDING item to PENDING and clears its error.
func (r *Repository) Resubmit(id int) (bool, error) {
	tx := r.DB.Model(&OutgoingMessage{}).
		Where("id = ? AND status IN ?", id, []string{string(domainQueue.StatusFailed), string(domainQueue.StatusSending)}).
		Updates(map[string]interface{}{
			"status":        string(domainQueue.StatusPending),
			"processed_at":  nil,
			"error_message": nil,
		})
	if tx.Error != nil {
		r.Logger.Error("Error resubmitting message", zap.Int("id", id), zap.Error(tx.Error))
		return false, domainErrors.NewAppError(tx.Error, domainErrors.RepositoryError)
	}
	return tx.RowsAffected == 1, nil
}

func (m *OutgoingMessage) toDomainMapper() *domainQueue.Item {
	return &domainQueue.Item{
		ID:           m.ID,
		ContactID:    m.ContactID,
		PhoneNumber:  m.PhoneNumber,
		MessageBody:  m.MessageBody,
		Status:       domainQueue.Status(m.Status),
		CreatedAt:    m.CreatedAt,
		ProcessedAt:  m.ProcessedAt,
		ErrorMessage: m.ErrorMessage,
	}
}
