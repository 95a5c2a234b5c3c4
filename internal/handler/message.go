package handler

import (
	"context"
	"net/http"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
	"github.com/meethere/meethere-api/internal/service"
)

type chatService interface {
	SendMessage(ctx context.Context, senderID int64, req service.SendMessageRequest) (*domain.Message, error)
	GetConversation(ctx context.Context, userID, partnerID int64) ([]domain.Message, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
}

type MessageHandler struct {
	chat chatService
}

func NewMessageHandler(chat chatService) *MessageHandler {
	return &MessageHandler{chat: chat}
}

type sendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

func (r sendMessageRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ReceiverID <= 0 {
		errs = append(errs, FieldError{Field: "receiver_id", Message: "required"})
	}
	return errs
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	msg, err := h.chat.SendMessage(r.Context(), userID, service.SendMessageRequest{
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to send message", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMessageDTO(msg))
}

func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	partnerID, appErr := pathID(r, "userId")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	msgs, err := h.chat.GetConversation(r.Context(), userID, partnerID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to load conversation", "partner_id", partnerID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toMessageDTOs(msgs))
}

func (h *MessageHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, appErr := callerID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	convs, err := h.chat.ListConversations(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list conversations", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toConversationDTOs(convs))
}
