package settings

import "time"

// Setting keys stored in app_settings.
const (
	KeyCampaignFlag                  = "campaign_flag"
	KeyStopFlag                      = "stop_flag"
	KeyTestMode                      = "testMode"
	KeyTestContacts                  = "testContacts"
	KeyBatchSize                     = "batchSize"
	KeyDelaySeconds                  = "delaySeconds"
	KeyRetryAttempts                 = "retryAttempts"
	KeyMessageMain                   = "message_main"
	KeyMessageGreetings              = "message_greetings"
	KeyMessageFarewells              = "message_farewells"
	KeyCountryCode                   = "messaging.countryCode"
	KeyCampaignCheckIntervalSeconds  = "campaignCheckIntervalSeconds"
	KeyQueueCheckIntervalSeconds     = "queueCheckIntervalSeconds"
	KeyIndividualMessageDelaySeconds = "individualMessageDelaySeconds"
	KeyLogUnknownSenders             = "log_unknown_senders"
)

const (
	FlagOn  = "1"
	FlagOff = "0"
)

const (
	DefaultBatchSize                     = 5
	DefaultDelaySeconds                  = 30
	DefaultRetryAttempts                 = 0
	DefaultCampaignCheckIntervalSeconds  = 30
	DefaultQueueCheckIntervalSeconds     = 10
	DefaultIndividualMessageDelaySeconds = 5

	MinCampaignCheckIntervalSeconds = 10
	MinQueueCheckIntervalSeconds    = 5
)

// KnownKeys lists every key with the raw default used when it is absent.
var KnownKeys = map[string]string{
	KeyCampaignFlag:                  FlagOff,
	KeyStopFlag:                      FlagOff,
	KeyTestMode:                      "false",
	KeyTestContacts:                  "[]",
	KeyBatchSize:                     "5",
	KeyDelaySeconds:                  "30",
	KeyRetryAttempts:                 "0",
	KeyMessageMain:                   "",
	KeyMessageGreetings:              "[]",
	KeyMessageFarewells:              "[]",
	KeyCountryCode:                   "",
	KeyCampaignCheckIntervalSeconds:  "30",
	KeyQueueCheckIntervalSeconds:     "10",
	KeyIndividualMessageDelaySeconds: "5",
	KeyLogUnknownSenders:             FlagOn,
}

// Template holds the parts a campaign message is composed from.
type Template struct {
	Greetings   []string
	MainMessage string
	Farewells   []string
}

// RuntimeConfiguration is an immutable snapshot of the tunables, loaded fresh
// for each campaign run.
type RuntimeConfiguration struct {
	TestMode                      bool
	TestContacts                  []string
	BatchSize                     int
	DelaySeconds                  int
	RetryAttempts                 int
	Template                      Template
	CountryCode                   string
	CampaignCheckIntervalSeconds  int
	QueueCheckIntervalSeconds     int
	IndividualMessageDelaySeconds int
}

func (c RuntimeConfiguration) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

func (c RuntimeConfiguration) IndividualMessageDelay() time.Duration {
	return time.Duration(c.IndividualMessageDelaySeconds) * time.Second
}

// CampaignCheckInterval applies the 10 second floor.
func (c RuntimeConfiguration) CampaignCheckInterval() time.Duration {
	seconds := c.CampaignCheckIntervalSeconds
	if seconds <= 0 {
		seconds = DefaultCampaignCheckIntervalSeconds
	}
	if seconds < MinCampaignCheckIntervalSeconds {
		seconds = MinCampaignCheckIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// QueueCheckInterval applies the 5 second floor.
func (c RuntimeConfiguration) QueueCheckInterval() time.Duration {
	seconds := c.QueueCheckIntervalSeconds
	if seconds <= 0 {
		seconds = DefaultQueueCheckIntervalSeconds
	}
	if seconds < MinQueueCheckIntervalSeconds {
		seconds = MinQueueCheckIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

type ISettingsService interface {
	Get(key string, defaultValue string) (string, error)
	Set(key string, value string) error
	GetAll() (map[string]string, error)
	SeedMissing(values map[string]string) (int, error)
}
