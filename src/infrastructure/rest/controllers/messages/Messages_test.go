package messages

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "go-wa-dispatch/src/domain/errors"
	domainMessage "go-wa-dispatch/src/domain/message"
	logger "go-wa-dispatch/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type MockMessageUseCase struct {
	listRecentFunc func(int) (*[]domainMessage.LogEntry, error)
	deleteFunc     func(int) error
}

func (m *MockMessageUseCase) ListRecent(limit int) (*[]domainMessage.LogEntry, error) {
	return m.listRecentFunc(limit)
}

func (m *MockMessageUseCase) Delete(id int) error {
	return m.deleteFunc(id)
}

func newContext(target string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, target, nil)
	c.Params = params
	return c, w
}

func TestListRecent(t *testing.T) {
	contactID := 2
	var gotLimit int
	mock := &MockMessageUseCase{listRecentFunc: func(limit int) (*[]domainMessage.LogEntry, error) {
		gotLimit = limit
		return &[]domainMessage.LogEntry{{
			ID:          1,
			ContactID:   &contactID,
			Phone:       "+56911112222",
			MessageType: "text",
			MessageBody: "hola",
			Direction:   domainMessage.Inbound,
			Status:      domainMessage.StatusReceived,
			Timestamp:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}}, nil
	}}
	controller := NewMessagesController(mock, logger.NewNopLogger())

	c, w := newContext("/messages?limit=20", nil)
	controller.ListRecent(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, gotLimit)
	var body []LogEntryResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	if assert.Len(t, body, 1) {
		assert.Equal(t, string(domainMessage.Inbound), body[0].Direction)
		assert.Equal(t, "hola", body[0].MessageBody)
	}

	c, _ = newContext("/messages", nil)
	controller.ListRecent(c)
	assert.Equal(t, 0, gotLimit)
}

func TestListRecent_InvalidLimit(t *testing.T) {
	mock := &MockMessageUseCase{listRecentFunc: func(int) (*[]domainMessage.LogEntry, error) {
		t.Fatal("use case must not be called")
		return nil, nil
	}}
	c, _ := newContext("/messages?limit=ten", nil)

	NewMessagesController(mock, logger.NewNopLogger()).ListRecent(c)

	if assert.NotEmpty(t, c.Errors) {
		assert.True(t, domainErrors.IsType(c.Errors.Last().Err, domainErrors.ValidationError))
	}
}

func TestDelete(t *testing.T) {
	mock := &MockMessageUseCase{deleteFunc: func(id int) error {
		if id != 3 {
			return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		return nil
	}}
	controller := NewMessagesController(mock, logger.NewNopLogger())

	c, w := newContext("/messages/3", gin.Params{{Key: "id", Value: "3"}})
	controller.Delete(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, c.Errors)

	c, _ = newContext("/messages/4", gin.Params{{Key: "id", Value: "4"}})
	controller.Delete(c)
	if assert.NotEmpty(t, c.Errors) {
		assert.True(t, domainErrors.IsType(c.Errors.Last().Err, domainErrors.NotFound))
	}

	c, _ = newContext("/messages/x", gin.Params{{Key: "id", Value: "x"}})
	controller.Delete(c)
	if assert.NotEmpty(t, c.Errors) {
		assert.True(t, domainErrors.IsType(c.Errors.Last().Err, domainErrors.ValidationError))
	}
}
