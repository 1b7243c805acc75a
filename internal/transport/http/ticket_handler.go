package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

type TicketHandler struct {
	tickets *service.TicketService
}

func RegisterTickets(e *echo.Echo, auth *service.AuthService, tickets *service.TicketService) {
	handler := &TicketHandler{tickets: tickets}

	group := e.Group("/api/tickets", RequireAuth(auth))
	group.POST("", handler.createTicket)
	group.GET("", handler.listMine)
	group.GET("/:id", handler.getTicket)

	admin := e.Group("/api/admin/tickets", RequireAuth(auth), RequireAdmin())
	admin.GET("", handler.listAll)
	admin.PUT("/:id/status", handler.updateStatus)
}

func (h *TicketHandler) createTicket(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	ticket, err := h.tickets.Create(c.Request().Context(), claims.UserID, req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrTicketValidation) {
			return c.JSON(http.StatusBadRequest, util.Fail("subject and body required"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusCreated, util.Data(ticket))
}

func (h *TicketHandler) listMine(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	tickets, err := h.tickets.ListMine(c.Request().Context(), claims.UserID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Data(tickets))
}

func (h *TicketHandler) getTicket(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid ticket id"))
	}

	ticket, err := h.tickets.Get(c.Request().Context(), id, claims.UserID, isAdminRequest(c))
	if err != nil {
		return h.writeTicketError(c, err)
	}

	return c.JSON(http.StatusOK, util.Data(ticket))
}

func (h *TicketHandler) listAll(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	limit, offset := parsePagination(c, 20, 0)

	tickets, err := h.tickets.List(c.Request().Context(), status, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTicketStatus) {
			return c.JSON(http.StatusBadRequest, util.Fail("invalid ticket status"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Data(tickets))
}

func (h *TicketHandler) updateStatus(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid ticket id"))
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	ticket, err := h.tickets.UpdateStatus(c.Request().Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTicketStatus) {
			return c.JSON(http.StatusBadRequest, util.Fail("invalid ticket status"))
		}
		return h.writeTicketError(c, err)
	}

	return c.JSON(http.StatusOK, util.Data(ticket))
}

func (h *TicketHandler) writeTicketError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, util.Fail("ticket not found"))
	case errors.Is(err, service.ErrTicketForbidden):
		return c.JSON(http.StatusForbidden, util.Fail("not allowed to view this ticket"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}
}
