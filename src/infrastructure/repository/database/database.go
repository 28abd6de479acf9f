package database

import (
	"fmt"
	"os"
	"strings"

	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/repository/database/contact"
	"go-wa-dispatch/src/infrastructure/repository/database/messagelog"
	"go-wa-dispatch/src/infrastructure/repository/database/queue"
	"go-wa-dispatch/src/infrastructure/repository/database/settings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// loadDatabaseConfig loads database configuration from environment variables
// Returns error if any required environment variable is missing
func loadDatabaseConfig() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		Driver:   strings.ToLower(os.Getenv("DB_DRIVER")),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverMySQL
	}
	if cfg.Driver != DriverMySQL && cfg.Driver != DriverPostgres {
		return DatabaseConfig{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	required := map[string]string{
		"DB_HOST":     cfg.Host,
		"DB_PORT":     cfg.Port,
		"DB_USER":     cfg.User,
		"DB_PASSWORD": cfg.Password,
		"DB_NAME":     cfg.DBName,
	}
	if cfg.Driver == DriverPostgres {
		required["DB_SSLMODE"] = cfg.SSLMode
	}

	// Check for missing required environment variables
	var missingVars []string
	for _, name := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"} {
		if value, ok := required[name]; ok && value == "" {
			missingVars = append(missingVars, name)
		}
	}
	if len(missingVars) > 0 {
		return DatabaseConfig{}, fmt.Errorf("missing required database environment variables: %s", strings.Join(missingVars, ", "))
	}
	return cfg, nil
}

func (c DatabaseConfig) GetDSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName)
}

func (c DatabaseConfig) dialector() gorm.Dialector {
	if c.Driver == DriverPostgres {
		return postgres.Open(c.GetDSN())
	}
	return mysql.Open(c.GetDSN())
}

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&contact.Contact{},
		&messagelog.MessageLog{},
		&queue.OutgoingMessage{},
		&settings.AppSetting{},
	}
}

func MigrateEntitiesGORM(db *gorm.DB, loggerInstance *logger.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		loggerInstance.Error("Error migrating database entities", zap.Error(err))
		return err
	}
	loggerInstance.Info("Database entities migration completed successfully")
	return nil
}

// InitDB opens the configured database, migrates it and returns the handle.
func InitDB(loggerInstance *logger.Logger) (*gorm.DB, error) {
	cfg, err := loadDatabaseConfig()
	if err != nil {
		loggerInstance.Error("Failed to load database configuration", zap.Error(err))
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}

	gormZap := logger.NewGormLogger(loggerInstance.Log).
		LogMode(gormlogger.Warn)

	db, err := gorm.Open(cfg.dialector(), &gorm.Config{
		Logger:         gormZap,
		TranslateError: true,
	})
	if err != nil {
		loggerInstance.Error("Error connecting to the database", zap.String("driver", cfg.Driver), zap.Error(err))
		return nil, err
	}

	if err = MigrateEntitiesGORM(db, loggerInstance); err != nil {
		return nil, err
	}

	loggerInstance.Info("Database connection and migrations successful", zap.String("driver", cfg.Driver))
	return db, nil
}

// LoadSettingsSeed reads a YAML document of initial settings. Nested maps are
// flattened into dotted keys, so `messaging: {countryCode: "56"}` becomes
// messaging.countryCode. An empty path yields no values.
func LoadSettingsSeed(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings seed %s: %w", path, err)
	}
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings seed %s: %w", path, err)
	}
	out := make(map[string]interface{})
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[interface{}]interface{}, out map[string]interface{}) {
	for k, v := range node {
		key := fmt.Sprint(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if child, ok := v.(map[interface{}]interface{}); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = v
	}
}
