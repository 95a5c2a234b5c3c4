package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/service"
)

var errStoreDown = errors.New("dial tcp: connection refused")

type mockChatService struct {
	sent      service.SendMessageRequest
	message   *domain.Message
	messages  []domain.Message
	convs     []domain.Conversation
	partnerID int64
	err       error
}

func (m *mockChatService) SendMessage(_ context.Context, _ int64, req service.SendMessageRequest) (*domain.Message, error) {
	m.sent = req
	return m.message, m.err
}

func (m *mockChatService) GetConversation(_ context.Context, _, partnerID int64) ([]domain.Message, error) {
	m.partnerID = partnerID
	return m.messages, m.err
}

func (m *mockChatService) ListConversations(context.Context, int64) ([]domain.Conversation, error) {
	return m.convs, m.err
}

func TestMessageHandler_Send(t *testing.T) {
	msg := &domain.Message{
		ID: 3, SenderID: 1, ReceiverID: 2, Content: "hi",
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Sender:    domain.UserSummary{ID: 1, Name: "alice"},
		Receiver:  domain.UserSummary{ID: 2, Name: "bob"},
	}
	svc := &mockChatService{message: msg}
	rec := httptest.NewRecorder()

	NewMessageHandler(svc).Send(rec, authedRequest(http.MethodPost, "/api/messages", `{"receiver_id":2,"content":"hi"}`, 1))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, service.SendMessageRequest{ReceiverID: 2, Content: "hi"}, svc.sent)

	var dto messageDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &dto))
	assert.Equal(t, "hi", dto.Content)
	assert.Equal(t, "alice", dto.Sender.Name)
}

func TestMessageHandler_SendErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		svcErr    error
		wantCode  int
		wantError string
	}{
		{name: "missing receiver", body: `{"content":"hi"}`, wantCode: http.StatusBadRequest, wantError: "VALIDATION_FAILED"},
		{name: "to self", body: `{"receiver_id":1,"content":"hi"}`, svcErr: domain.ErrSelfTarget, wantCode: http.StatusBadRequest, wantError: "SELF_TARGET_NOT_ALLOWED"},
		{name: "empty content", body: `{"receiver_id":2,"content":""}`, svcErr: &domain.ValidationError{Fields: []domain.FieldError{{Field: "content", Message: "required"}}}, wantCode: http.StatusBadRequest, wantError: "VALIDATION_FAILED"},
		{name: "unknown receiver", body: `{"receiver_id":2,"content":"hi"}`, svcErr: domain.ErrRecipientNotFound, wantCode: http.StatusNotFound, wantError: "RECIPIENT_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			NewMessageHandler(&mockChatService{err: tt.svcErr}).Send(rec, authedRequest(http.MethodPost, "/api/messages", tt.body, 1))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantError, decodeEnvelope(t, rec).Error.Code)
		})
	}
}

func TestMessageHandler_Conversation(t *testing.T) {
	svc := &mockChatService{messages: []domain.Message{}}
	req := authedRequest(http.MethodGet, "/api/messages/2", "", 1)
	req.SetPathValue("userId", "2")
	rec := httptest.NewRecorder()

	NewMessageHandler(svc).Conversation(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), svc.partnerID)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}

func TestMessageHandler_ConversationUnknownUser(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/messages/99", "", 1)
	req.SetPathValue("userId", "99")
	rec := httptest.NewRecorder()

	NewMessageHandler(&mockChatService{err: domain.ErrNotFound}).Conversation(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageHandler_Conversations(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := &mockChatService{convs: []domain.Conversation{
		{
			Partner:     domain.UserSummary{ID: 2, Name: "bob"},
			LastMessage: &domain.Message{ID: 7, SenderID: 2, ReceiverID: 1, Content: "hello", CreatedAt: at},
		},
		{Partner: domain.UserSummary{ID: 3, Name: "carol"}},
	}}
	rec := httptest.NewRecorder()

	NewMessageHandler(svc).Conversations(rec, authedRequest(http.MethodGet, "/api/messages", "", 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"partner":{"id":2,"name":"bob","avatar_url":""},
		 "last_message":{"id":7,"sender_id":2,"receiver_id":1,"content":"hello","created_at":"2026-05-01T10:00:00Z"}},
		{"partner":{"id":3,"name":"carol","avatar_url":""},"last_message":null}
	]`, string(decodeEnvelope(t, rec).Data))
}

func TestMessageHandler_ConversationsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()

	NewMessageHandler(&mockChatService{err: errStoreDown}).Conversations(rec, authedRequest(http.MethodGet, "/api/messages", "", 1))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
