package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	authUseCase "go-wa-dispatch/src/application/usecases/auth"
	domainContact "go-wa-dispatch/src/domain/contact"
	domainMessage "go-wa-dispatch/src/domain/message"
	domainQueue "go-wa-dispatch/src/domain/queue"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/security"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(key string, defaultValue string) (string, error) {
	args := m.Called(key, defaultValue)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsRepository) Set(key string, value string) error {
	return m.Called(key, value).Error(0)
}

func (m *MockSettingsRepository) GetAll() (map[string]string, error) {
	args := m.Called()
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSettingsRepository) SeedMissing(values map[string]string) (int, error) {
	args := m.Called(values)
	return args.Int(0), args.Error(1)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindEligible() (*[]domainContact.Contact, error) {
	args := m.Called()
	return args.Get(0).(*[]domainContact.Contact), args.Error(1)
}

func (m *MockContactRepository) MarkContacted(id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactRepository) FindByPhone(phone string) (*domainContact.Contact, error) {
	args := m.Called(phone)
	return args.Get(0).(*domainContact.Contact), args.Error(1)
}

func (m *MockContactRepository) GetByID(id int) (*domainContact.Contact, error) {
	args := m.Called(id)
	return args.Get(0).(*domainContact.Contact), args.Error(1)
}

type MockMessageLogRepository struct {
	mock.Mock
}

func (m *MockMessageLogRepository) Append(entry *domainMessage.LogEntry) (int, error) {
	args := m.Called(entry)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageLogRepository) ListRecent(limit int) (*[]domainMessage.LogEntry, error) {
	args := m.Called(limit)
	return args.Get(0).(*[]domainMessage.LogEntry), args.Error(1)
}

func (m *MockMessageLogRepository) Delete(id int) error {
	return m.Called(id).Error(0)
}

type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Enqueue(contactID *int, phone string, body string) (int, error) {
	args := m.Called(contactID, phone, body)
	return args.Int(0), args.Error(1)
}

func (m *MockQueueRepository) FetchOldestPending() (*domainQueue.Item, error) {
	args := m.Called()
	return args.Get(0).(*domainQueue.Item), args.Error(1)
}

func (m *MockQueueRepository) Claim(id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQueueRepository) SetStatus(id int, status domainQueue.Status, errorMessage *string) error {
	return m.Called(id, status, errorMessage).Error(0)
}

func (m *MockQueueRepository) Delete(id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQueueRepository) ListByStatus(status domainQueue.Status) (*[]domainQueue.Item, error) {
	args := m.Called(status)
	return args.Get(0).(*[]domainQueue.Item), args.Error(1)
}

func (m *MockQueueRepository) Resubmit(id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, address string, text string) error {
	return m.Called(address, text).Error(0)
}

type MockQRProvider struct{}

func (MockQRProvider) LatestQR() ([]byte, bool) { return nil, false }

type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateJWTToken(subject string, tokenType string) (*security.AppToken, error) {
	args := m.Called(subject, tokenType)
	return args.Get(0).(*security.AppToken), args.Error(1)
}

func (m *MockJWTService) GetClaimsAndVerifyToken(tokenString string, tokenType string) (jwt.MapClaims, error) {
	args := m.Called(tokenString, tokenType)
	return args.Get(0).(jwt.MapClaims), args.Error(1)
}

func TestNewTestApplicationContext(t *testing.T) {
	appContext := NewTestApplicationContext(
		new(MockSettingsRepository),
		new(MockContactRepository),
		new(MockMessageLogRepository),
		new(MockQueueRepository),
		new(MockSender),
		MockQRProvider{},
		new(MockJWTService),
		authUseCase.AdminCredentials{Username: "admin", PasswordHash: "hash"},
		logger.NewNopLogger(),
	)

	assert.NotNil(t, appContext.Coordinator)
	assert.False(t, appContext.Coordinator.Running())
	assert.NotNil(t, appContext.AuthController)
	assert.NotNil(t, appContext.CampaignController)
	assert.NotNil(t, appContext.QueueController)
	assert.NotNil(t, appContext.SettingsController)
	assert.NotNil(t, appContext.MessagesController)
	assert.NotNil(t, appContext.WhatsAppController)
	assert.NotNil(t, appContext.InboundUseCase)
	assert.False(t, appContext.CampaignRunner.IsRunning())
	assert.False(t, appContext.QueueUseCase.IsDraining())
}

func TestLoadJWTConfig(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET_KEY", "access")
	t.Setenv("JWT_REFRESH_SECRET_KEY", "refresh")
	t.Setenv("JWT_ACCESS_TIME_MINUTE", "15")
	t.Setenv("JWT_REFRESH_TIME_HOUR", "")

	cfg := loadJWTConfig()

	assert.Equal(t, "access", cfg.AccessSecret)
	assert.Equal(t, "refresh", cfg.RefreshSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTTL)
}

type recordingSeed struct {
	fakeSettingsUseCase
	values map[string]interface{}
}

func (r *recordingSeed) Seed(values map[string]interface{}) (int, error) {
	r.values = values
	return len(values), nil
}

func TestSeedSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "batchSize: 3\nmessaging:\n  countryCode: \"56\"\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	settings := &recordingSeed{}

	assert.NoError(t, seedSettings(settings, path, logger.NewNopLogger()))
	assert.Equal(t, 3, settings.values["batchSize"])
	assert.Equal(t, "56", settings.values["messaging.countryCode"])

	// no file configured
	settings.values = nil
	assert.NoError(t, seedSettings(settings, "", logger.NewNopLogger()))
	assert.Nil(t, settings.values)

	assert.Error(t, seedSettings(settings, filepath.Join(t.TempDir(), "missing.yaml"), logger.NewNopLogger()))
}
