package contact

import (
	"errors"
	"time"

	domainContact "go-wa-dispatch/src/domain/contact"
	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Contact is the database model for campaign recipients.
type Contact struct {
	ID                int       `gorm:"primaryKey"`
	Nickname          string    `gorm:"column:nickname;size:255;not null"`
	Phone             string    `gorm:"column:phone;size:32;uniqueIndex;not null"`
	FullName          *string   `gorm:"column:full_name;size:255"`
	Email             *string   `gorm:"column:email;size:255"`
	CanContact        bool      `gorm:"column:can_contact;not null;index"`
	HasBeenContacted  bool      `gorm:"column:has_been_contacted;not null;index"`
	CustomField1      *string   `gorm:"column:custom_field_1;type:text"`
	CustomField2      *string   `gorm:"column:custom_field_2;type:text"`
	CustomField3      *string   `gorm:"column:custom_field_3;type:text"`
	CustomField4      *string   `gorm:"column:custom_field_4;type:text"`
	CustomField5      *string   `gorm:"column:custom_field_5;type:text"`
	ImportErrorReason *string   `gorm:"column:import_error_reason;type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}

type ContactRepositoryInterface interface {
	domainContact.IContactService
	Create(contact *domainContact.Contact) (*domainContact.Contact, error)
}

type Repository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewContactRepository(db *gorm.DB, loggerInstance *logger.Logger) ContactRepositoryInterface {
	return &Repository{DB: db, Logger: loggerInstance}
}

// FindEligible returns the contacts a campaign may send to, oldest first.
func (r *Repository) FindEligible() (*[]domainContact.Contact, error) {
	var contacts []Contact
	err := r.DB.
		Where("can_contact = ? AND has_been_contacted = ? AND phone <> ?", true, false, "").
		Order("id ASC").
		Find(&contacts).Error
	if err != nil {
		r.Logger.Error("Error loading eligible contacts", zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	r.Logger.Info("Loaded eligible contacts", zap.Int("count", len(contacts)))
	return arrayToDomainMapper(&contacts), nil
}

func (r *Repository) MarkContacted(id int) (bool, error) {
	tx := r.DB.Model(&Contact{}).Where("id = ?", id).Update("has_been_contacted", true)
	if tx.Error != nil {
		r.Logger.Error("Error marking contact as contacted", zap.Int("id", id), zap.Error(tx.Error))
		return false, domainErrors.NewAppError(tx.Error, domainErrors.RepositoryError)
	}
	return tx.RowsAffected > 0, nil
}

// FindByPhone matches the stored phone with or without its leading '+'.
// It returns nil when nothing matches.
func (r *Repository) FindByPhone(phone string) (*domainContact.Contact, error) {
	variants := domainContact.PhoneVariants(phone)
	if len(variants) == 0 {
		return nil, nil
	}
	var contacts []Contact
	if err := r.DB.Where("phone IN ?", variants).Limit(1).Find(&contacts).Error; err != nil {
		r.Logger.Error("Error finding contact by phone", zap.String("phone", phone), zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return contacts[0].toDomainMapper(), nil
}

// GetByID returns nil when the contact does not exist.
func (r *Repository) GetByID(id int) (*domainContact.Contact, error) {
	var contact Contact
	err := r.DB.Where("id = ?", id).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.Logger.Warn("Contact not found", zap.Int("id", id))
			return nil, nil
		}
		r.Logger.Error("Error getting contact by ID", zap.Int("id", id), zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return contact.toDomainMapper(), nil
}

// Create inserts a contact. A duplicate phone is reported as a Conflict.
func (r *Repository) Create(contact *domainContact.Contact) (*domainContact.Contact, error) {
	model := fromDomainMapper(contact)
	if err := r.DB.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.Logger.Warn("Contact phone already exists", zap.String("phone", contact.Phone))
			return nil, domainErrors.NewConflict(err)
		}
		r.Logger.Error("Error creating contact", zap.String("phone", contact.Phone), zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	return model.toDomainMapper(), nil
}
