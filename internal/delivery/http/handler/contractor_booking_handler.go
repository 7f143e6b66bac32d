package handler

import (
	"net/http"

	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/usecase"
	"marketplace-booking/pkg/response"
	"marketplace-booking/pkg/validator"

	"github.com/sirupsen/logrus"
)

type ContractorBookingHandler struct {
	bookingUsecase usecase.ContractorBookingUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewContractorBookingHandler(bookingUsecase usecase.ContractorBookingUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ContractorBookingHandler {
	return &ContractorBookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
		log:            log,
	}
}

// GetBookings handles GET /contractor/bookings?status=&start=&end=
func (h *ContractorBookingHandler) GetBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := dto.BookingListQuery{
		Status: q.Get("status"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	}

	bookings, err := h.bookingUsecase.GetBookings(r.Context(), query)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *ContractorBookingHandler) QuickCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.QuickCreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.QuickCreateBooking(r.Context(), &req)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

func (h *ContractorBookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.RescheduleBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.bookingUsecase.RescheduleBooking(r.Context(), bookingID, &req)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Booking rescheduled successfully", result)
}

func (h *ContractorBookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.UpdateBookingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.UpdateBookingStatus(r.Context(), bookingID, &req)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Booking status updated successfully", booking)
}

func (h *ContractorBookingHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkBookingActionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.bookingUsecase.BulkUpdateStatus(r.Context(), &req)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}
