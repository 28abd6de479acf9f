package campaign

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go-wa-dispatch/src/application/usecases/composer"
	settingsUseCase "go-wa-dispatch/src/application/usecases/settings"
	domainContact "go-wa-dispatch/src/domain/contact"
	domainErrors "go-wa-dispatch/src/domain/errors"
	domainMessage "go-wa-dispatch/src/domain/message"
	domainSettings "go-wa-dispatch/src/domain/settings"
	"go-wa-dispatch/src/domain/transport"
	"go-wa-dispatch/src/infrastructure/alerting"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/utils"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// RunResult summarises one campaign invocation.
type RunResult struct {
	RunID   string
	Sent    int
	Failed  int
	Stopped bool
	// Skipped is set when another run was already active.
	Skipped bool
}

// ICampaignRunner runs the outbound campaign over eligible contacts.
type ICampaignRunner interface {
	Run(ctx context.Context, cfg *domainSettings.RuntimeConfiguration) (RunResult, error)
	CheckAndRun(ctx context.Context) (RunResult, error)
	IsRunning() bool
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner holds the dependencies of a campaign run. Only one run is active at a time.
type Runner struct {
	Settings   settingsUseCase.ISettingsUseCase
	Contacts   domainContact.IContactService
	MessageLog domainMessage.IMessageLogService
	Sender     transport.ISender
	Composer   composer.IComposer
	Alerts     alerting.IReporter
	Logger     *logger.Logger
	Sleep      SleepFunc

	running atomic.Bool
}

// NewRunner builds a Runner that waits between sends with utils.Sleep.
func NewRunner(
	settings settingsUseCase.ISettingsUseCase,
	contacts domainContact.IContactService,
	messageLog domainMessage.IMessageLogService,
	sender transport.ISender,
	messageComposer composer.IComposer,
	alerts alerting.IReporter,
	loggerInstance *logger.Logger,
) *Runner {
	return &Runner{
		Settings:   settings,
		Contacts:   contacts,
		MessageLog: messageLog,
		Sender:     sender,
		Composer:   messageComposer,
		Alerts:     alerts,
		Logger:     loggerInstance,
		Sleep:      utils.Sleep,
	}
}

// IsRunning reports whether a campaign run is in progress.
func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// CheckAndRun is the timer entry point: it starts a run only when the
// campaign flag is set, loading a fresh configuration for it.
func (r *Runner) CheckAndRun(ctx context.Context) (RunResult, error) {
	if r.IsRunning() {
		r.Logger.Debug("Campaign check skipped, a run is already active")
		return RunResult{Skipped: true}, nil
	}
	requested, err := r.Settings.CampaignRequested()
	if err != nil {
		return RunResult{}, err
	}
	if !requested {
		return RunResult{}, nil
	}

	cfg, err := r.Settings.LoadConfiguration()
	if err != nil {
		r.Logger.Error("Campaign requested but configuration could not be loaded", zap.Error(err))
		return RunResult{}, err
	}
	return r.Run(ctx, cfg)
}

// Run sends the campaign to every eligible contact. Only one run is active
// at a time; a concurrent call returns immediately with Skipped set.
func (r *Runner) Run(ctx context.Context, cfg *domainSettings.RuntimeConfiguration) (result RunResult, err error) {
	if !r.running.CompareAndSwap(false, true) {
		r.Logger.Info("Campaign run already in progress, skipping")
		return RunResult{Skipped: true}, nil
	}
	defer r.running.Store(false)

	runID, idErr := uuid.NewV4()
	if idErr == nil {
		result.RunID = runID.String()
	}
	log := r.Logger.With(zap.String("runID", result.RunID))

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("campaign run panicked: %v", rec)
			log.Error("Unexpected failure during campaign run", zap.Error(err))
			if r.Alerts != nil {
				r.Alerts.CaptureError(err, map[string]string{"component": "campaign", "runID": result.RunID})
			}
		}
	}()

	stop, err := r.Settings.StopRequested()
	if err != nil {
		log.Error("Could not read stop flag, aborting campaign run", zap.Error(err))
		return result, err
	}
	if stop {
		log.Info("Stale stop request found, clearing flags without running")
		if clearErr := r.Settings.ClearFlags(); clearErr != nil {
			log.Error("Error clearing campaign flags", zap.Error(clearErr))
		}
		result.Stopped = true
		return result, nil
	}

	contacts, err := r.selectContacts(cfg, log)
	if err != nil {
		return result, err
	}
	if len(contacts) == 0 {
		log.Info("No contacts to process, clearing campaign flag")
		if clearErr := r.Settings.ClearCampaign(); clearErr != nil {
			log.Error("Error clearing campaign flag", zap.Error(clearErr))
		}
		return result, nil
	}

	log.Info("Campaign run started",
		zap.Int("contacts", len(contacts)),
		zap.Bool("testMode", cfg.TestMode),
		zap.Int("retryAttempts", cfg.RetryAttempts),
		zap.Int("delaySeconds", cfg.DelaySeconds))

	for i := range contacts {
		contact := &contacts[i]

		stop, stopErr := r.Settings.StopRequested()
		if stopErr != nil {
			log.Warn("Could not read stop flag, continuing", zap.Error(stopErr))
		}
		if stop {
			log.Info("Stop requested, halting campaign", zap.Int("sent", result.Sent), zap.Int("failed", result.Failed))
			if clearErr := r.Settings.ClearFlags(); clearErr != nil {
				log.Error("Error clearing campaign flags", zap.Error(clearErr))
			}
			result.Stopped = true
			return result, nil
		}

		if domainContact.NormalizeForSend(contact.Phone, cfg.CountryCode) == "" {
			log.Warn("Skipping contact without a usable phone", zap.String("contact", contact.Label()))
			continue
		}

		if waitErr := r.Sleep(ctx, cfg.Delay()); waitErr != nil {
			log.Warn("Campaign run interrupted by shutdown", zap.Error(waitErr))
			return result, waitErr
		}

		sent, failed, sendErr := r.processContact(ctx, cfg, contact, log)
		result.Sent += sent
		result.Failed += failed
		if sendErr != nil {
			log.Warn("Campaign run interrupted by shutdown", zap.Error(sendErr))
			return result, sendErr
		}
	}

	if clearErr := r.Settings.ClearCampaign(); clearErr != nil {
		log.Error("Error clearing campaign flag", zap.Error(clearErr))
	}
	log.Info("Campaign run finished", zap.Int("sent", result.Sent), zap.Int("failed", result.Failed))
	return result, nil
}

func (r *Runner) selectContacts(cfg *domainSettings.RuntimeConfiguration, log *logger.Logger) ([]domainContact.Contact, error) {
	if cfg.TestMode {
		contacts := make([]domainContact.Contact, 0, len(cfg.TestContacts))
		for i, phone := range cfg.TestContacts {
			contacts = append(contacts, domainContact.Contact{
				Nickname:   fmt.Sprintf("Test Contact %d", i+1),
				Phone:      phone,
				CanContact: true,
			})
		}
		log.Info("Test mode: using synthetic contacts", zap.Int("count", len(contacts)))
		return contacts, nil
	}

	eligible, err := r.Contacts.FindEligible()
	if err != nil {
		log.Error("Error loading eligible contacts", zap.Error(err))
		return nil, err
	}

	selected := make([]domainContact.Contact, 0, len(*eligible))
	for _, c := range *eligible {
		if c.Eligible() {
			selected = append(selected, c)
		}
	}

	batches := Batch(selected, cfg.BatchSize)
	for i, batch := range batches {
		log.Info("Prepared contact batch", zap.Int("batch", i+1), zap.Int("of", len(batches)), zap.Int("size", len(batch)))
	}
	return Flatten(batches), nil
}

// processContact runs the retry loop for one contact and returns the counter
// increments. The error is only set when ctx ends during a send or a retry
// wait; nothing is logged for that contact in that case.
func (r *Runner) processContact(
	ctx context.Context,
	cfg *domainSettings.RuntimeConfiguration,
	contact *domainContact.Contact,
	log *logger.Logger,
) (sent int, failed int, err error) {
	maxAttempts := cfg.RetryAttempts + 1
	phone := domainContact.NormalizeForSend(contact.Phone, cfg.CountryCode)
	address := domainContact.ChatAddress(phone)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, composeErr := r.Composer.Compose(contact, cfg.Template, cfg.TestMode)
		if composeErr != nil {
			log.Error("Could not compose message, skipping contact", zap.String("contact", contact.Label()), zap.Error(composeErr))
			return sent, failed, nil
		}

		sendErr := r.Sender.Send(ctx, address, body)
		if sendErr == nil {
			log.Info("Campaign message sent", zap.String("contact", contact.Label()), zap.String("phone", phone), zap.Int("attempt", attempt))
			r.appendLog(contact.ID, phone, body, domainMessage.StatusSent, log)
			if !cfg.TestMode && contact.ID != nil {
				if _, markErr := r.Contacts.MarkContacted(*contact.ID); markErr != nil {
					log.Error("Error marking contact as contacted", zap.Int("contactID", *contact.ID), zap.Error(markErr))
				}
			}
			return 1, 0, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("Campaign send interrupted by shutdown", zap.String("contact", contact.Label()), zap.Error(sendErr))
			return 0, 0, ctxErr
		}

		if domainErrors.IsPermanent(sendErr) {
			log.Warn("Permanent delivery failure", zap.String("contact", contact.Label()), zap.String("phone", phone), zap.Error(sendErr))
			r.appendLog(contact.ID, phone, body, domainMessage.StatusFailed, log)
			return 0, 1, nil
		}

		if attempt < maxAttempts {
			log.Warn("Transient delivery failure, retrying",
				zap.String("contact", contact.Label()),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(sendErr))
			if waitErr := r.Sleep(ctx, cfg.Delay()); waitErr != nil {
				return 0, 0, waitErr
			}
			continue
		}

		log.Error("Delivery failed after all attempts", zap.String("contact", contact.Label()), zap.Int("attempts", maxAttempts), zap.Error(sendErr))
		r.appendLog(contact.ID, phone, body, domainMessage.StatusFailed, log)
		return 0, 1, nil
	}
	return 0, 0, nil
}

func (r *Runner) appendLog(contactID *int, phone, body string, status domainMessage.Status, log *logger.Logger) {
	if body == "" {
		body = "Failed"
	}
	_, err := r.MessageLog.Append(&domainMessage.LogEntry{
		ContactID:   contactID,
		Phone:       phone,
		MessageType: domainMessage.TypeText,
		MessageBody: body,
		Direction:   domainMessage.Outbound,
		Status:      status,
		Timestamp:   time.Now(),
	})
	if err != nil {
		log.Error("Error writing message log", zap.String("phone", phone), zap.String("status", string(status)), zap.Error(err))
	}
}

// Batch splits contacts into groups of size. A size below one yields a single
// batch.
func Batch(contacts []domainContact.Contact, size int) [][]domainContact.Contact {
	if len(contacts) == 0 {
		return nil
	}
	if size < 1 {
		size = len(contacts)
	}
	batches := make([][]domainContact.Contact, 0, (len(contacts)+size-1)/size)
	for start := 0; start < len(contacts); start += size {
		end := start + size
		if end > len(contacts) {
			end = len(contacts)
		}
		batches = append(batches, contacts[start:end])
	}
	return batches
}

// Flatten is the inverse of Batch.
func Flatten(batches [][]domainContact.Contact) []domainContact.Contact {
	var out []domainContact.Contact
	for _, batch := range batches {
		out = append(out, batch...)
	}
	return out
}
