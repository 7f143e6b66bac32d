package handler

import (
	"net/http"

	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/usecase"
	"marketplace-booking/pkg/response"
	"marketplace-booking/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
	log                 *logrus.Logger
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator, log *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
		log:                 log,
	}
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.availabilityUsecase.GetAvailability(r.Context())
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *AvailabilityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.SetAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.SetAvailability(r.Context(), &req)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", availability)
}

// GetAvailableSlots is public; anonymous callers see the same slots.
func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid service ID", nil)
		return
	}

	slots, err := h.availabilityUsecase.GetAvailableSlots(r.Context(), serviceID)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}
