package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	domainContact "go-wa-dispatch/src/domain/contact"
	domainErrors "go-wa-dispatch/src/domain/errors"
	domainMessage "go-wa-dispatch/src/domain/message"
	domainQueue "go-wa-dispatch/src/domain/queue"
	domainSettings "go-wa-dispatch/src/domain/settings"
	"go-wa-dispatch/src/domain/transport"
	"go-wa-dispatch/src/infrastructure/alerting"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/utils"

	"go.uber.org/zap"
)

// DrainResult reports what a single drain pass did.
type DrainResult struct {
	ItemID  int
	Sent    bool
	Failed  bool
	Skipped bool
}

// IQueueUseCase drains and manages the outgoing queue.
type IQueueUseCase interface {
	DrainOnce(ctx context.Context, cfg *domainSettings.RuntimeConfiguration) (DrainResult, error)
	IsDraining() bool
	Enqueue(contactID *int, phone string, body string) (int, error)
	EnqueueForContact(contactID int, body string) (int, error)
	ListFailed() (*[]domainQueue.Item, error)
	Resubmit(id int) error
	Delete(id int) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// QueueUseCase sends queued messages one at a time through Sender.
type QueueUseCase struct {
	Queue      domainQueue.IOutgoingQueueService
	Contacts   domainContact.IContactService
	MessageLog domainMessage.IMessageLogService
	Sender     transport.ISender
	Alerts     alerting.IReporter
	Logger     *logger.Logger
	Sleep      SleepFunc

	draining atomic.Bool
}

// NewQueueUseCase builds a use case that waits between sends with utils.Sleep.
func NewQueueUseCase(
	queueRepository domainQueue.IOutgoingQueueService,
	contacts domainContact.IContactService,
	messageLog domainMessage.IMessageLogService,
	sender transport.ISender,
	alerts alerting.IReporter,
	loggerInstance *logger.Logger,
) *QueueUseCase {
	return &QueueUseCase{
		Queue:      queueRepository,
		Contacts:   contacts,
		MessageLog: messageLog,
		Sender:     sender,
		Alerts:     alerts,
		Logger:     loggerInstance,
		Sleep:      utils.Sleep,
	}
}

// IsDraining reports whether a drain pass is in progress.
func (q *QueueUseCase) IsDraining() bool {
	return q.draining.Load()
}

// DrainOnce sends at most one pending item. The item is claimed (moved to
// SENDING) before any network call; a successful send deletes it and a failed
// one leaves it as FAILED for operator review. Cancellation before or during
// the send returns the item to PENDING.
func (q *QueueUseCase) DrainOnce(ctx context.Context, cfg *domainSettings.RuntimeConfiguration) (result DrainResult, err error) {
	if !q.draining.CompareAndSwap(false, true) {
		q.Logger.Debug("Queue drain already in progress, skipping")
		return DrainResult{Skipped: true}, nil
	}
	defer q.draining.Store(false)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("queue drain panicked: %v", rec)
			q.Logger.Error("Unexpected failure while draining queue", zap.Error(err))
			if q.Alerts != nil {
				q.Alerts.CaptureError(err, map[string]string{"component": "queue", "itemID": fmt.Sprint(result.ItemID)})
			}
		}
	}()

	item, err := q.Queue.FetchOldestPending()
	if err != nil {
		q.Logger.Error("Error fetching pending queue item", zap.Error(err))
		return result, err
	}
	if item == nil {
		return result, nil
	}
	result.ItemID = item.ID

	claimed, err := q.Queue.Claim(item.ID)
	if err != nil {
		q.Logger.Error("Error claiming queue item", zap.Int("itemID", item.ID), zap.Error(err))
		return result, err
	}
	if !claimed {
		q.Logger.Info("Queue item already claimed elsewhere", zap.Int("itemID", item.ID))
		result.Skipped = true
		return result, nil
	}

	phone := domainContact.FormatForStorage(item.PhoneNumber, cfg.CountryCode)
	q.Logger.Info("Processing queue item", zap.Int("itemID", item.ID), zap.String("phone", phone))

	var sendErr error
	if phone == "" {
		sendErr = domainErrors.NewPermanent(fmt.Errorf("invalid phone number %q", item.PhoneNumber))
	} else {
		if waitErr := q.Sleep(ctx, cfg.IndividualMessageDelay()); waitErr != nil {
			q.Logger.Warn("Queue drain interrupted by shutdown", zap.Int("itemID", item.ID), zap.Error(waitErr))
			q.release(item.ID)
			return result, waitErr
		}
		sendErr = q.Sender.Send(ctx, domainContact.ChatAddress(phone), item.MessageBody)
		if ctxErr := ctx.Err(); sendErr != nil && ctxErr != nil {
			q.Logger.Warn("Queue send interrupted by shutdown", zap.Int("itemID", item.ID), zap.Error(sendErr))
			q.release(item.ID)
			return result, ctxErr
		}
	}

	if sendErr == nil {
		q.appendLog(item.ContactID, phone, item.MessageBody, domainMessage.StatusSent)
		if _, delErr := q.Queue.Delete(item.ID); delErr != nil {
			q.Logger.Error("Error removing sent queue item", zap.Int("itemID", item.ID), zap.Error(delErr))
		}
		q.Logger.Info("Queue item sent", zap.Int("itemID", item.ID))
		result.Sent = true
		return result, nil
	}

	q.Logger.Warn("Queue item delivery failed", zap.Int("itemID", item.ID), zap.Error(sendErr))
	q.appendLog(item.ContactID, phone, item.MessageBody, domainMessage.StatusFailed)
	reason := sendErr.Error()
	if statusErr := q.Queue.SetStatus(item.ID, domainQueue.StatusFailed, &reason); statusErr != nil {
		q.Logger.Error("Error marking queue item failed", zap.Int("itemID", item.ID), zap.Error(statusErr))
	}
	result.Failed = true
	return result, nil
}

// release puts a claimed item back in line for the next drain.
func (q *QueueUseCase) release(id int) {
	if _, err := q.Queue.Resubmit(id); err != nil {
		q.Logger.Error("Error releasing queue item claim", zap.Int("itemID", id), zap.Error(err))
	}
}

func (q *QueueUseCase) appendLog(contactID *int, phone, body string, status domainMessage.Status) {
	if body == "" {
		body = "Failed"
	}
	_, err := q.MessageLog.Append(&domainMessage.LogEntry{
		ContactID:   contactID,
		Phone:       phone,
		MessageType: domainMessage.TypeText,
		MessageBody: body,
		Direction:   domainMessage.Outbound,
		Status:      status,
		Timestamp:   time.Now(),
	})
	if err != nil {
		q.Logger.Error("Error writing message log", zap.String("phone", phone), zap.Error(err))
	}
}

func (q *QueueUseCase) Enqueue(contactID *int, phone string, body string) (int, error) {
	if strings.TrimSpace(phone) == "" {
		return 0, domainErrors.NewAppError(errors.New("phone is required"), domainErrors.ValidationError)
	}
	if strings.TrimSpace(body) == "" {
		return 0, domainErrors.NewAppError(errors.New("message body is required"), domainErrors.ValidationError)
	}
	id, err := q.Queue.Enqueue(contactID, phone, body)
	if err != nil {
		q.Logger.Error("Error enqueuing message", zap.String("phone", phone), zap.Error(err))
		return 0, err
	}
	q.Logger.Info("Message enqueued", zap.Int("itemID", id), zap.String("phone", phone))
	return id, nil
}

// EnqueueForContact queues a message to a stored contact's phone.
func (q *QueueUseCase) EnqueueForContact(contactID int, body string) (int, error) {
	contact, err := q.Contacts.GetByID(contactID)
	if err != nil {
		return 0, err
	}
	if contact == nil {
		return 0, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	if strings.TrimSpace(contact.Phone) == "" {
		return 0, domainErrors.NewAppError(fmt.Errorf("contact %d has no phone number", contactID), domainErrors.ValidationError)
	}
	return q.Enqueue(contact.ID, contact.Phone, body)
}

// ListFailed returns FAILED items, oldest first.
func (q *QueueUseCase) ListFailed() (*[]domainQueue.Item, error) {
	return q.Queue.ListByStatus(domainQueue.StatusFailed)
}

// Resubmit moves a FAILED item, or one left SENDING by a crash, back to
// PENDING. Failed items are never retried on their own.
func (q *QueueUseCase) Resubmit(id int) error {
	ok, err := q.Queue.Resubmit(id)
	if err != nil {
		q.Logger.Error("Error resubmitting queue item", zap.Int("itemID", id), zap.Error(err))
		return err
	}
	if !ok {
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	q.Logger.Info("Queue item resubmitted", zap.Int("itemID", id))
	return nil
}

// Delete removes an item in any state.
func (q *QueueUseCase) Delete(id int) error {
	ok, err := q.Queue.Delete(id)
	if err != nil {
		q.Logger.Error("Error deleting queue item", zap.Int("itemID", id), zap.Error(err))
		return err
	}
	if !ok {
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	return nil
}
