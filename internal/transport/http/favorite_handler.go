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

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func RegisterFavorites(e *echo.Echo, auth *service.AuthService, favorites *service.FavoriteService) {
	handler := &FavoriteHandler{favorites: favorites}

	protected := e.Group("/api/users/me/favorites", RequireAuth(auth))
	protected.POST("", handler.saveFavorite)
	protected.DELETE("/:listing_id", handler.removeFavorite)
	protected.GET("", handler.listFavorites)

	public := e.Group("/api/listings/:listing_id/favorites")
	public.GET("/count", handler.countFavorites)
}

func (h *FavoriteHandler) saveFavorite(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	var req struct {
		ListingID string `json:"listing_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	listingID, err := uuid.Parse(strings.TrimSpace(req.ListingID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("listing_id must be a valid UUID"))
	}

	favorite, err := h.favorites.Save(c.Request().Context(), claims.UserID, listingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			return c.JSON(http.StatusNotFound, util.Fail("listing not found"))
		case errors.Is(err, service.ErrFavoriteAlreadyExists):
			return c.JSON(http.StatusConflict, util.Fail("listing already saved"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
		}
	}

	return c.JSON(http.StatusCreated, util.Data(favorite))
}

func (h *FavoriteHandler) removeFavorite(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	listingID, err := parseUUIDParam(c, "listing_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("listing_id must be a valid UUID"))
	}

	if err := h.favorites.Remove(c.Request().Context(), claims.UserID, listingID); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			return c.JSON(http.StatusNotFound, util.Fail("listing is not in your favorites"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.OK("listing removed from favorites"))
}

func (h *FavoriteHandler) listFavorites(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	result, err := h.favorites.List(c.Request().Context(), claims.UserID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"success":    true,
		"data":       result.Items,
		"pagination": paginationMeta(result.Limit, result.Offset, len(result.Items), result.Total),
	})
}

func (h *FavoriteHandler) countFavorites(c echo.Context) error {
	listingID, err := parseUUIDParam(c, "listing_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("listing_id must be a valid UUID"))
	}

	count, err := h.favorites.Count(c.Request().Context(), listingID)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, util.Fail("listing not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"success":         true,
		"listing_id":      listingID,
		"favorites_count": count,
	})
}
