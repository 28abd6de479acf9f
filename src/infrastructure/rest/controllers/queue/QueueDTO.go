package queue

import (
	"time"

	domainQueue "go-wa-dispatch/src/domain/queue"
)

type EnqueueRequest struct {
	Phone       string `json:"phone" binding:"required"`
	MessageBody string `json:"messageBody" binding:"required"`
	ContactID   *int   `json:"contactId" binding:"omitempty,gte=1"`
}

type ContactMessageRequest struct {
	MessageBody string `json:"messageBody" binding:"required"`
}

type EnqueueResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

type ItemResponse struct {
	ID           int        `json:"id"`
	ContactID    *int       `json:"contactId,omitempty"`
	PhoneNumber  string     `json:"phoneNumber"`
	MessageBody  string     `json:"messageBody"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
}

func toItemResponses(items *[]domainQueue.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(*items))
	for _, item := range *items {
		out = append(out, ItemResponse{
			ID:           item.ID,
			ContactID:    item.ContactID,
			PhoneNumber:  item.PhoneNumber,
			MessageBody:  item.MessageBody,
			Status:       string(item.Status),
			CreatedAt:    item.CreatedAt,
			ProcessedAt:  item.ProcessedAt,
			ErrorMessage: item.ErrorMessage,
		})
	}
	return out
}
