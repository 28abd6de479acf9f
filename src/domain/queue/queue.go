package queue

import "time"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSending Status = "SENDING"
	StatusFailed  Status = "FAILED"
)

// Item is an individually requested outbound message. Successful sends are
// deleted, so only pending, in-flight and failed work is ever stored.
type Item struct {
	ID           int
	ContactID    *int
	PhoneNumber  string
	MessageBody  string
	Status       Status
	CreatedAt    time.Time
	ProcessedAt  *time.Time
	ErrorMessage *string
}

type IOutgoingQueueService interface {
	Enqueue(contactID *int, phone string, body string) (int, error)
	FetchOldestPending() (*Item, error)
	Claim(id int) (bool, error)
	SetStatus(id int, status Status, errorMessage *string) error
	Delete(id int) (bool, error)
	ListByStatus(status Status) (*[]Item, error)
	Resubmit(id int) (bool, error)
}
