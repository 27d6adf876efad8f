package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allahbobax/boolean-api/internal/repository"
	"github.com/allahbobax/boolean-api/internal/usecase"
)

// HWIDHandler exposes the hardware binding endpoints. These are called by the
// launcher through the keyed internal surface, so the target user is named
// explicitly instead of coming from a session.
type HWIDHandler struct {
	devices *usecase.DeviceService
}

// NewHWIDHandler constructs HWIDHandler.
func NewHWIDHandler(devices *usecase.DeviceService) *HWIDHandler {
	return &HWIDHandler{devices: devices}
}

// Current godoc
// @Summary Return the hardware id bound to an account
// @Tags Devices
// @Produce json
// @Param user_id query string true "Account id"
// @Success 200 {object} HWIDStatusResponse
// @Router /internal/hwid [get]
func (h *HWIDHandler) Current(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user_id is required"))
		return
	}

	hwid, err := h.devices.Current(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load hardware id"))
		return
	}

	c.JSON(http.StatusOK, HWIDStatusResponse{HWID: hwid})
}

// Bind godoc
// @Summary Bind a hardware id to an account
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body HWIDRequest true "Hardware id payload"
// @Success 200 {object} MessageResponse
// @Failure 409 {object} ErrorResponse
// @Router /internal/hwid/bind [post]
func (h *HWIDHandler) Bind(c *gin.Context) {
	var req HWIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid hwid payload"))
		return
	}

	if err := h.devices.Bind(c.Request.Context(), req.UserID, req.HWID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDeviceConflict, Status: http.StatusConflict, Message: "hardware id belongs to another account"},
			{Err: usecase.ErrDeviceBound, Status: http.StatusConflict, Message: "hardware id already bound, reset required"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to bind hardware id")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "hardware id bound"})
}

// Reset godoc
// @Summary Clear the hardware binding on an account
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body HWIDResetRequest true "Account id payload"
// @Success 200 {object} MessageResponse
// @Router /internal/hwid/reset [post]
func (h *HWIDHandler) Reset(c *gin.Context) {
	var req HWIDResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.devices.Reset(c.Request.Context(), req.UserID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to reset hardware id")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "hardware id reset"})
}

// Verify godoc
// @Summary Verify a hardware id and return the account subscription
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body HWIDRequest true "Hardware id payload"
// @Success 200 {object} HWIDVerifyResponse
// @Failure 403 {object} ErrorResponse
// @Router /internal/hwid/verify [post]
func (h *HWIDHandler) Verify(c *gin.Context) {
	var req HWIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid hwid payload"))
		return
	}

	user, err := h.devices.Verify(c.Request.Context(), req.UserID, req.HWID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDeviceMismatch, Status: http.StatusForbidden, Message: "hardware id mismatch"},
			{Err: usecase.ErrAccountBanned, Status: http.StatusForbidden, Message: "account banned"},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to verify hardware id")
		return
	}

	c.JSON(http.StatusOK, HWIDVerifyResponse{
		Valid:               true,
		Subscription:        string(user.Subscription),
		SubscriptionEndDate: user.SubscriptionEndDate,
	})
}
