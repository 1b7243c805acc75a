package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

type StatsHandler struct {
	stats *service.StatsService
}

func RegisterStats(e *echo.Echo, auth *service.AuthService, stats *service.StatsService) {
	handler := &StatsHandler{stats: stats}

	admin := e.Group("/api/admin/stats", RequireAuth(auth), RequireAdmin())
	admin.GET("", handler.overview)
}

func (h *StatsHandler) overview(c echo.Context) error {
	stats, err := h.stats.Overview(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}
	return c.JSON(http.StatusOK, util.Data(stats))
}
