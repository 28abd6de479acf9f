package settings

import (
	domainErrors "go-wa-dispatch/src/domain/errors"
	domainSettings "go-wa-dispatch/src/domain/settings"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppSetting is one key/value row of the settings store.
type AppSetting struct {
	SettingKey   string `gorm:"column:setting_key;primaryKey;size:128"`
	SettingValue string `gorm:"column:setting_value;type:text"`
}

func (AppSetting) TableName() string {
	return "app_settings"
}

type Repository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewSettingsRepository(db *gorm.DB, loggerInstance *logger.Logger) domainSettings.ISettingsService {
	return &Repository{DB: db, Logger: loggerInstance}
}

// Get returns defaultValue when the key is absent.
func (r *Repository) Get(key string, defaultValue string) (string, error) {
	var rows []AppSetting
	if err := r.DB.Where("setting_key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		r.Logger.Error("Error reading setting", zap.String("key", key), zap.Error(err))
		return defaultValue, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	if len(rows) == 0 {
		return defaultValue, nil
	}
	return rows[0].SettingValue, nil
}

// Set inserts the key or overwrites its value.
func (r *Repository) Set(key string, value string) error {
	row := AppSetting{SettingKey: key, SettingValue: value}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value"}),
	}).Create(&row).Error
	if err != nil {
		r.Logger.Error("Error writing setting", zap.String("key", key), zap.Error(err))
		return domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	r.Logger.Debug("Setting written", zap.String("key", key))
	return nil
}

func (r *Repository) GetAll() (map[string]string, error) {
	var rows []AppSetting
	if err := r.DB.Find(&rows).Error; err != nil {
		r.Logger.Error("Error reading settings", zap.Error(err))
		return nil, domainErrors.NewAppError(err, domainErrors.RepositoryError)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.SettingKey] = row.SettingValue
	}
	return out, nil
}

// SeedMissing inserts the given values for keys that do not exist yet and
// never overwrites stored ones. It returns the number of rows inserted.
func (r *Repository) SeedMissing(values map[string]string) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	rows := make([]AppSetting, 0, len(values))
	for k, v := range values {
		rows = append(rows, AppSetting{SettingKey: k, SettingValue: v})
	}
	tx := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if tx.Error != nil {
		r.Logger.Error("Error seeding settings", zap.Error(tx.Error))
		return 0, domainErrors.NewAppError(tx.Error, domainErrors.RepositoryError)
	}
	return int(tx.RowsAffected), nil
}
