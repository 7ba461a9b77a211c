package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/medihub/internal/config"
	"github.com/geocoder89/medihub/internal/domain/message"
	"github.com/geocoder89/medihub/internal/http/middlewares"
	"github.com/geocoder89/medihub/internal/utils"
	"github.com/gin-gonic/gin"
)

type MessageStore interface {
	Send(ctx context.Context, req message.SendRequest) (message.Message, error)
	Conversation(ctx context.Context, userA, userB string) ([]message.Message, error)
	MarkRead(ctx context.Context, id, receiverID string) error
}

type MessagesHandler struct {
	repo MessageStore
}

func NewMessagesHandler(repo MessageStore) *MessagesHandler {
	return &MessagesHandler{repo: repo}
}

func (h *MessagesHandler) Send(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req message.SendRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.SenderID = userID

	if req.ReceiverID == userID {
		RespondBadRequest(ctx, "cannot send a message to yourself", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	msg, err := h.repo.Send(cctx, req)

	if err != nil {
		if errors.Is(err, message.ErrReceiverUnknown) {
			RespondNotFound(ctx, "Receiver not found")
			return
		}

		RespondInternal(ctx, "Could not send message")
		return
	}

	ctx.JSON(http.StatusCreated, msg)
}

func (h *MessagesHandler) ConversationWith(ctx *gin.Context) {
	otherID := ctx.Param("userId")

	if !utils.IsUUID(otherID) {
		RespondBadRequest(ctx, "user id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.Conversation(cctx, userID, otherID)

	if err != nil {
		RespondInternal(ctx, "Could not fetch conversation")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *MessagesHandler) MarkRead(ctx *gin.Context) {
	msgID := ctx.Param("id")

	if !utils.IsUUID(msgID) {
		RespondBadRequest(ctx, "message id must be a valid UUID", nil)
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	// only the receiver can mark a message as read
	err := h.repo.MarkRead(cctx, msgID, userID)

	if err != nil {
		if errors.Is(err, message.ErrNotFound) {
			RespondNotFound(ctx, "Message not found")
			return
		}

		RespondInternal(ctx, "Could not mark message as read")
		return
	}

	ctx.Status(http.StatusNoContent)
}
