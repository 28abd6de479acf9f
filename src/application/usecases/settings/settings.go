package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	domainErrors "go-wa-dispatch/src/domain/errors"
	domainSettings "go-wa-dispatch/src/domain/settings"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"go.uber.org/zap"
)

type ISettingsUseCase interface {
	LoadConfiguration() (*domainSettings.RuntimeConfiguration, error)
	CampaignRequested() (bool, error)
	StopRequested() (bool, error)
	RequestCampaign() error
	RequestStop() error
	ClearCampaign() error
	ClearFlags() error
	LogUnknownSenders() (bool, error)
	Snapshot() (map[string]string, error)
	Update(values map[string]interface{}) error
	Seed(values map[string]interface{}) (int, error)
}

type SettingsUseCase struct {
	SettingsRepository domainSettings.ISettingsService
	Logger             *logger.Logger
}

func NewSettingsUseCase(settingsRepository domainSettings.ISettingsService, loggerInstance *logger.Logger) ISettingsUseCase {
	return &SettingsUseCase{
		SettingsRepository: settingsRepository,
		Logger:             loggerInstance,
	}
}

// LoadConfiguration reads every tunable in one query and falls back to the
// default for anything missing or malformed.
func (s *SettingsUseCase) LoadConfiguration() (*domainSettings.RuntimeConfiguration, error) {
	stored, err := s.SettingsRepository.GetAll()
	if err != nil {
		s.Logger.Error("Error loading settings", zap.Error(err))
		return nil, err
	}
	get := func(key string) string {
		if v, ok := stored[key]; ok {
			return v
		}
		return domainSettings.KnownKeys[key]
	}

	cfg := &domainSettings.RuntimeConfiguration{
		TestMode:                      parseBool(get(domainSettings.KeyTestMode)),
		TestContacts:                  s.parseList(domainSettings.KeyTestContacts, get(domainSettings.KeyTestContacts)),
		BatchSize:                     s.parseInt(domainSettings.KeyBatchSize, get(domainSettings.KeyBatchSize), domainSettings.DefaultBatchSize),
		DelaySeconds:                  s.parseInt(domainSettings.KeyDelaySeconds, get(domainSettings.KeyDelaySeconds), domainSettings.DefaultDelaySeconds),
		RetryAttempts:                 s.parseInt(domainSettings.KeyRetryAttempts, get(domainSettings.KeyRetryAttempts), domainSettings.DefaultRetryAttempts),
		CountryCode:                   strings.TrimSpace(get(domainSettings.KeyCountryCode)),
		CampaignCheckIntervalSeconds:  s.parseInt(domainSettings.KeyCampaignCheckIntervalSeconds, get(domainSettings.KeyCampaignCheckIntervalSeconds), domainSettings.DefaultCampaignCheckIntervalSeconds),
		QueueCheckIntervalSeconds:     s.parseInt(domainSettings.KeyQueueCheckIntervalSeconds, get(domainSettings.KeyQueueCheckIntervalSeconds), domainSettings.DefaultQueueCheckIntervalSeconds),
		IndividualMessageDelaySeconds: s.parseInt(domainSettings.KeyIndividualMessageDelaySeconds, get(domainSettings.KeyIndividualMessageDelaySeconds), domainSettings.DefaultIndividualMessageDelaySeconds),
		Template: domainSettings.Template{
			Greetings:   s.parseList(domainSettings.KeyMessageGreetings, get(domainSettings.KeyMessageGreetings)),
			MainMessage: get(domainSettings.KeyMessageMain),
			Farewells:   s.parseList(domainSettings.KeyMessageFarewells, get(domainSettings.KeyMessageFarewells)),
		},
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = domainSettings.DefaultBatchSize
	}
	if cfg.DelaySeconds < 0 {
		cfg.DelaySeconds = domainSettings.DefaultDelaySeconds
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = domainSettings.DefaultRetryAttempts
	}
	if cfg.IndividualMessageDelaySeconds < 0 {
		cfg.IndividualMessageDelaySeconds = domainSettings.DefaultIndividualMessageDelaySeconds
	}
	return cfg, nil
}

func parseBool(value string) bool {
	v := strings.TrimSpace(strings.ToLower(value))
	return v == "true" || v == "1"
}

func (s *SettingsUseCase) parseInt(key, value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		s.Logger.Warn("Invalid integer setting, using default", zap.String("key", key), zap.String("value", value), zap.Int("default", fallback))
		return fallback
	}
	return n
}

func (s *SettingsUseCase) parseList(key, value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		s.Logger.Warn("Invalid JSON list setting, using default", zap.String("key", key), zap.Error(err))
		return []string{}
	}
	out := list[:0]
	for _, item := range list {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s *SettingsUseCase) flag(key string) (bool, error) {
	value, err := s.SettingsRepository.Get(key, domainSettings.KnownKeys[key])
	if err != nil {
		s.Logger.Error("Error reading flag", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return strings.TrimSpace(value) == domainSettings.FlagOn, nil
}

func (s *SettingsUseCase) set(key, value string) error {
	if err := s.SettingsRepository.Set(key, value); err != nil {
		s.Logger.Error("Error writing setting", zap.String("key", key), zap.String("value", value), zap.Error(err))
		return err
	}
	return nil
}

func (s *SettingsUseCase) CampaignRequested() (bool, error) {
	return s.flag(domainSettings.KeyCampaignFlag)
}

func (s *SettingsUseCase) StopRequested() (bool, error) {
	return s.flag(domainSettings.KeyStopFlag)
}

// RequestCampaign also clears any stale stop request so the new run is not
// aborted on entry.
func (s *SettingsUseCase) RequestCampaign() error {
	if err := s.set(domainSettings.KeyStopFlag, domainSettings.FlagOff); err != nil {
		return err
	}
	return s.set(domainSettings.KeyCampaignFlag, domainSettings.FlagOn)
}

func (s *SettingsUseCase) RequestStop() error {
	return s.set(domainSettings.KeyStopFlag, domainSettings.FlagOn)
}

func (s *SettingsUseCase) ClearCampaign() error {
	return s.set(domainSettings.KeyCampaignFlag, domainSettings.FlagOff)
}

// ClearFlags resets both flags, attempting the second write even when the
// first fails.
func (s *SettingsUseCase) ClearFlags() error {
	stopErr := s.set(domainSettings.KeyStopFlag, domainSettings.FlagOff)
	campaignErr := s.set(domainSettings.KeyCampaignFlag, domainSettings.FlagOff)
	if stopErr != nil {
		return stopErr
	}
	return campaignErr
}

func (s *SettingsUseCase) LogUnknownSenders() (bool, error) {
	return s.flag(domainSettings.KeyLogUnknownSenders)
}

// Snapshot returns the effective value of every known key.
func (s *SettingsUseCase) Snapshot() (map[string]string, error) {
	stored, err := s.SettingsRepository.GetAll()
	if err != nil {
		s.Logger.Error("Error loading settings snapshot", zap.Error(err))
		return nil, err
	}
	out := make(map[string]string, len(domainSettings.KnownKeys))
	for key, def := range domainSettings.KnownKeys {
		if v, ok := stored[key]; ok {
			out[key] = v
		} else {
			out[key] = def
		}
	}
	return out, nil
}

type intRule struct {
	min int
}

var intRules = map[string]intRule{
	domainSettings.KeyBatchSize:                     {min: 1},
	domainSettings.KeyDelaySeconds:                  {min: 1},
	domainSettings.KeyRetryAttempts:                 {min: 0},
	domainSettings.KeyIndividualMessageDelaySeconds: {min: 0},
	domainSettings.KeyQueueCheckIntervalSeconds:     {min: domainSettings.MinQueueCheckIntervalSeconds},
	domainSettings.KeyCampaignCheckIntervalSeconds:  {min: domainSettings.MinCampaignCheckIntervalSeconds},
}

var listKeys = map[string]bool{
	domainSettings.KeyMessageGreetings: true,
	domainSettings.KeyMessageFarewells: true,
	domainSettings.KeyTestContacts:     true,
}

// Update validates every value first and only then writes, so a rejected
// request changes nothing. The campaign and stop flags are not editable here.
func (s *SettingsUseCase) Update(values map[string]interface{}) error {
	if len(values) == 0 {
		return domainErrors.NewAppError(fmt.Errorf("no settings provided"), domainErrors.ValidationError)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	encoded := make(map[string]string, len(values))
	for _, key := range keys {
		value, err := encodeSetting(key, values[key])
		if err != nil {
			s.Logger.Warn("Rejected settings update", zap.String("key", key), zap.Error(err))
			return domainErrors.NewAppError(err, domainErrors.ValidationError)
		}
		encoded[key] = value
	}

	for _, key := range keys {
		if err := s.set(key, encoded[key]); err != nil {
			return domainErrors.NewAppError(err, domainErrors.RepositoryError)
		}
	}
	s.Logger.Info("Settings updated", zap.Strings("keys", keys))
	return nil
}

// Seed stores values for keys that have never been set. Invalid entries are
// logged and skipped so one bad line in a seed file does not block startup.
func (s *SettingsUseCase) Seed(values map[string]interface{}) (int, error) {
	encoded := make(map[string]string, len(values))
	for key, raw := range values {
		value, err := encodeSetting(key, raw)
		if err != nil {
			s.Logger.Warn("Skipping settings seed entry", zap.String("key", key), zap.Error(err))
			continue
		}
		encoded[key] = value
	}
	inserted, err := s.SettingsRepository.SeedMissing(encoded)
	if err != nil {
		s.Logger.Error("Error seeding settings", zap.Error(err))
		return 0, err
	}
	s.Logger.Info("Settings seeded", zap.Int("inserted", inserted), zap.Int("provided", len(values)))
	return inserted, nil
}

func encodeSetting(key string, raw interface{}) (string, error) {
	if _, known := domainSettings.KnownKeys[key]; !known || key == domainSettings.KeyCampaignFlag || key == domainSettings.KeyStopFlag {
		return "", fmt.Errorf("unknown setting %q", key)
	}

	if rule, ok := intRules[key]; ok {
		n, err := toInt(raw)
		if err != nil {
			return "", fmt.Errorf("%s must be an integer", key)
		}
		if n < rule.min {
			return "", fmt.Errorf("%s must be at least %d", key, rule.min)
		}
		return strconv.Itoa(n), nil
	}

	if listKeys[key] {
		list, err := toStringList(raw)
		if err != nil {
			return "", fmt.Errorf("%s must be a list of strings", key)
		}
		b, err := json.Marshal(list)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch key {
	case domainSettings.KeyTestMode:
		switch v := raw.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			if v == "true" || v == "1" {
				return "true", nil
			}
			if v == "false" || v == "0" {
				return "false", nil
			}
		}
		return "", fmt.Errorf("%s must be a boolean", key)
	case domainSettings.KeyLogUnknownSenders:
		v := fmt.Sprint(raw)
		if b, ok := raw.(bool); ok {
			v = map[bool]string{true: domainSettings.FlagOn, false: domainSettings.FlagOff}[b]
		}
		if v != domainSettings.FlagOn && v != domainSettings.FlagOff {
			return "", fmt.Errorf("%s must be '1' or '0'", key)
		}
		return v, nil
	}

	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return v, nil
}

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	}
	return 0, fmt.Errorf("not an integer")
}

func toStringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("not a string")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("not a list")
}
