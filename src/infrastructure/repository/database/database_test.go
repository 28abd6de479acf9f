package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDatabaseConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		wantDSN string
	}{
		{
			name:    "mysql by default",
			env:     map[string]string{"DB_HOST": "db", "DB_PORT": "3306", "DB_USER": "u", "DB_PASSWORD": "p", "DB_NAME": "wa"},
			wantDSN: "u:p@tcp(db:3306)/wa?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name:    "postgres",
			env:     map[string]string{"DB_DRIVER": "postgres", "DB_HOST": "db", "DB_PORT": "5432", "DB_USER": "u", "DB_PASSWORD": "p", "DB_NAME": "wa", "DB_SSLMODE": "disable"},
			wantDSN: "host=db port=5432 user=u password=p dbname=wa sslmode=disable",
		},
		{
			name:    "postgres requires sslmode",
			env:     map[string]string{"DB_DRIVER": "postgres", "DB_HOST": "db", "DB_PORT": "5432", "DB_USER": "u", "DB_PASSWORD": "p", "DB_NAME": "wa"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"DB_DRIVER": "oracle"},
			wantErr: true,
		},
		{
			name:    "missing host",
			env:     map[string]string{"DB_PORT": "3306", "DB_USER": "u", "DB_PASSWORD": "p", "DB_NAME": "wa"},
			wantErr: true,
		},
	}
	keys := []string{"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, tt.env[k])
			}
			cfg, err := loadDatabaseConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantDSN, cfg.GetDSN())
		})
	}
}

func TestLoadSettingsSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
batchSize: 3
testMode: true
message_greetings:
  - Hola
  - Buenas
messaging:
  countryCode: "56"
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	values, err := LoadSettingsSeed(path)

	assert.NoError(t, err)
	assert.Equal(t, 3, values["batchSize"])
	assert.Equal(t, true, values["testMode"])
	assert.Equal(t, []interface{}{"Hola", "Buenas"}, values["message_greetings"])
	assert.Equal(t, "56", values["messaging.countryCode"])
}

func TestLoadSettingsSeed_EmptyPathAndErrors(t *testing.T) {
	values, err := LoadSettingsSeed("")
	assert.NoError(t, err)
	assert.Empty(t, values)

	_, err = LoadSettingsSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	assert.NoError(t, os.WriteFile(bad, []byte("batchSize: [unclosed"), 0o600))
	_, err = LoadSettingsSeed(bad)
	assert.Error(t, err)
}

func TestModels(t *testing.T) {
	assert.Len(t, Models(), 4)
}
