package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

type ListingHandler struct {
	listings *service.ListingService
}

type ListingRequest struct {
	Title           string   `json:"title"`
	Description     *string  `json:"description"`
	PriceCents      int64    `json:"price_cents"`
	PropertyType    string   `json:"property_type"`
	TransactionType string   `json:"transaction_type"`
	SurfaceM2       *float64 `json:"surface_m2"`
	Rooms           *int     `json:"rooms"`
	Bedrooms        *int     `json:"bedrooms"`
	City            string   `json:"city"`
	PostalCode      string   `json:"postal_code"`
	Address         *string  `json:"address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Publish         bool     `json:"publish"`
}

func RegisterListings(e *echo.Echo, auth *service.AuthService, listings *service.ListingService) {
	handler := &ListingHandler{listings: listings}

	public := e.Group("/api/listings")
	public.GET("", handler.listPublished)
	public.GET("/:id", handler.getListing)

	protected := e.Group("/api/listings", RequireAuth(auth))
	protected.POST("", handler.createListing)
	protected.PUT("/:id", handler.updateListing)
	protected.DELETE("/:id", handler.archiveListing)
	protected.POST("/:id/photos", handler.uploadPhoto)

	mine := e.Group("/api/users/me/listings", RequireAuth(auth))
	mine.GET("", handler.listMine)
}

func (h *ListingHandler) listPublished(c echo.Context) error {
	filter := parseListingFilter(c)

	result, err := h.listings.ListPublished(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"success":    true,
		"data":       result.Items,
		"pagination": paginationMeta(result.Limit, result.Offset, len(result.Items), result.Total),
	})
}

func (h *ListingHandler) getListing(c echo.Context) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid listing id"))
	}

	listing, err := h.listings.GetPublished(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			return c.JSON(http.StatusNotFound, util.Fail("listing not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Data(listing))
}

func (h *ListingHandler) createListing(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	listing, err := h.listings.Create(c.Request().Context(), claims.UserID, listingInput(req))
	if err != nil {
		if errors.Is(err, service.ErrListingValidation) {
			return c.JSON(http.StatusBadRequest, util.Fail("invalid listing fields"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusCreated, util.Data(listing))
}

func (h *ListingHandler) updateListing(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid listing id"))
	}

	var req ListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	listing, err := h.listings.Update(c.Request().Context(), id, claims.UserID, isAdminRequest(c), listingInput(req))
	if err != nil {
		return h.writeListingError(c, err)
	}

	return c.JSON(http.StatusOK, util.Data(listing))
}

func (h *ListingHandler) archiveListing(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid listing id"))
	}

	if err := h.listings.Archive(c.Request().Context(), id, claims.UserID, isAdminRequest(c)); err != nil {
		return h.writeListingError(c, err)
	}

	return c.JSON(http.StatusOK, util.OK("listing archived"))
}

func (h *ListingHandler) listMine(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	items, err := h.listings.ListMine(c.Request().Context(), claims.UserID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Data(items))
}

func (h *ListingHandler) uploadPhoto(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("invalid listing id"))
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("photo file required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail("unable to read photo"))
	}
	defer file.Close()

	listing, err := h.listings.AddPhoto(c.Request().Context(), id, claims.UserID, isAdminRequest(c), service.ListingPhotoUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoRequired):
			return c.JSON(http.StatusBadRequest, util.Fail("photo file required"))
		case errors.Is(err, service.ErrPhotoTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, util.Fail("photo exceeds maximum size"))
		case errors.Is(err, service.ErrPhotoUnsupportedType):
			return c.JSON(http.StatusUnsupportedMediaType, util.Fail("unsupported photo type"))
		case errors.Is(err, service.ErrPhotoStorageOffline):
			return c.JSON(http.StatusServiceUnavailable, util.Fail("photo storage unavailable"))
		default:
			return h.writeListingError(c, err)
		}
	}

	return c.JSON(http.StatusOK, util.Data(listing))
}

func (h *ListingHandler) writeListingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		return c.JSON(http.StatusNotFound, util.Fail("listing not found"))
	case errors.Is(err, service.ErrListingForbidden):
		return c.JSON(http.StatusForbidden, util.Fail("not allowed to manage this listing"))
	case errors.Is(err, service.ErrListingValidation):
		return c.JSON(http.StatusBadRequest, util.Fail("invalid listing fields"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}
}

func listingInput(req ListingRequest) service.ListingInput {
	return service.ListingInput{
		Title:           req.Title,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		PropertyType:    req.PropertyType,
		TransactionType: req.TransactionType,
		SurfaceM2:       req.SurfaceM2,
		Rooms:           req.Rooms,
		Bedrooms:        req.Bedrooms,
		City:            req.City,
		PostalCode:      req.PostalCode,
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Publish:         req.Publish,
	}
}

func parseListingFilter(c echo.Context) domain.ListingListFilter {
	filter := domain.ListingListFilter{
		City:            strings.TrimSpace(c.QueryParam("city")),
		TransactionType: strings.TrimSpace(c.QueryParam("transaction_type")),
	}
	for _, raw := range strings.Split(c.QueryParam("property_type"), ",") {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw != "" && domain.ValidPropertyType(raw) {
			filter.PropertyTypes = append(filter.PropertyTypes, raw)
		}
	}
	if v := strings.TrimSpace(c.QueryParam("min_price")); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			filter.MinPriceCents = &parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("max_price")); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			filter.MaxPriceCents = &parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("min_surface")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			filter.MinSurfaceM2 = &parsed
		}
	}
	filter.Limit, filter.Offset = parsePagination(c, 20, 0)
	return filter
}
