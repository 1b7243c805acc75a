package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

type ConversationHandler struct {
	conversations *service.ConversationService
}

func RegisterConversations(e *echo.Echo, auth *service.AuthService, conversations *service.ConversationService) {
	handler := &ConversationHandler{conversations: conversations}

	group := e.Group("/api/conversations", RequireAuth(auth))
	group.POST("", handler.startConversation)
	group.GET("", handler.listConversations)
	group.GET("/:id/messages", handler.listMessages)
	group.POST("/:id/messages", handler.sendMessage)
	group.POST("/:id/read", handler.markRead)
}

func (h *ConversationHandler) startConversation(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	var req struct {
		ListingID string `json:"listing_id"`
		Body      string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	listingID, err := uuid.Parse(strings.TrimSpace(req.ListingID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("listing_id must be a valid UUID"))
	}

	conv, msg, err := h.conversations.Start(c.Request().Context(), listingID, claims.UserID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			return c.JSON(http.StatusNotFound, util.Fail("listing not found"))
		case errors.Is(err, service.ErrOwnListingConversation):
			return c.JSON(http.StatusBadRequest, util.Fail("cannot message your own listing"))
		case errors.Is(err, service.ErrMessageValidation):
			return c.JSON(http.StatusBadRequest, util.Fail("message body required"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"success":      true,
		"conversation": conv,
		"message":      msg,
	})
}

func (h *ConversationHandler) listConversations(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	items, err := h.conversations.ListMine(c.Request().Context(), claims.UserID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Data(items))
}

func (h *ConversationHandler) listMessages(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid conversation id"))
	}

	limit, offset := parsePagination(c, 50, 0)
	messages, err := h.conversations.Messages(c.Request().Context(), id, claims.UserID, limit, offset)
	if err != nil {
		return h.writeConversationError(c, err)
	}

	return c.JSON(http.StatusOK, util.Data(messages))
}

func (h *ConversationHandler) sendMessage(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid conversation id"))
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	msg, err := h.conversations.Send(c.Request().Context(), id, claims.UserID, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrMessageValidation) {
			return c.JSON(http.StatusBadRequest, util.Fail("message body required"))
		}
		return h.writeConversationError(c, err)
	}

	return c.JSON(http.StatusCreated, util.Data(msg))
}

func (h *ConversationHandler) markRead(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid conversation id"))
	}

	if err := h.conversations.MarkRead(c.Request().Context(), id, claims.UserID); err != nil {
		return h.writeConversationError(c, err)
	}

	return c.JSON(http.StatusOK, util.OK("conversation marked as read"))
}

func (h *ConversationHandler) writeConversationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		return c.JSON(http.StatusNotFound, util.Fail("conversation not found"))
	case errors.Is(err, service.ErrConversationForbidden):
		return c.JSON(http.StatusForbidden, util.Fail("not a participant of this conversation"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}
}
