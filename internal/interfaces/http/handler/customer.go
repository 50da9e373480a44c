package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/domain/profile"
	"github.com/profilegateway/backend/internal/interfaces/http/dto"
	"github.com/profilegateway/backend/internal/interfaces/http/router"
)

// CustomerService is the application service behind the customer endpoints
type CustomerService interface {
	GetCustomer(ctx context.Context, id int64) (*profile.LegacyProfile, error)
	CreateCustomer(ctx context.Context, input *profile.LegacyProfile) (*profile.LegacyProfile, error)
	UpdateCustomerProfile(ctx context.Context, id int64, input *profile.LegacyProfile) (*profile.LegacyProfile, error)
}

// CustomerHandler handles customer-related API endpoints.
// Request and response bodies are LegacyProfile documents.
type CustomerHandler struct {
	BaseHandler
	service CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(service CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Routes returns the customer route group
func (h *CustomerHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("customers", "/customers").
		GET("/:id", h.Get).
		POST("", h.Create).
		PUT("/:id", h.Update)
}

// Get godoc
// @Summary      Get a customer profile
// @Tags         customers
// @Produce      json
// @Param        id path int true "Customer ID"
// @Success      200 {object} profile.LegacyProfile
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.customerID(c)
	if !ok {
		return
	}

	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// Create godoc
// @Summary      Create a customer profile
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body profile.LegacyProfile true "Legacy customer profile"
// @Success      201 {object} profile.LegacyProfile
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	input, ok := h.bindProfile(c)
	if !ok {
		return
	}

	customer, err := h.service.CreateCustomer(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// Update godoc
// @Summary      Replace a customer profile
// @Description  The path id selects the customer; customerId in the body is passed through unchanged.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path int true "Customer ID"
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body profile.LegacyProfile true "Legacy customer profile"
// @Success      200 {object} profile.LegacyProfile
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.customerID(c)
	if !ok {
		return
	}

	input, ok := h.bindProfile(c)
	if !ok {
		return
	}

	customer, err := h.service.UpdateCustomerProfile(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) customerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Customer id must be a 64-bit integer")
		return 0, false
	}
	return id, true
}

// bindProfile decodes the request body. An empty or null body yields a nil
// profile, which the service rejects as an invalid argument.
func (h *CustomerHandler) bindProfile(c *gin.Context) (*profile.LegacyProfile, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return nil, false
		}
		h.BadRequest(c, "Failed to read request body")
		return nil, false
	}
	if len(raw) == 0 {
		return nil, true
	}

	var input *profile.LegacyProfile
	if err := json.Unmarshal(raw, &input); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Request body must be a JSON customer profile")
		return nil, false
	}
	return input, true
}
