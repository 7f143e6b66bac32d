package converter

import (
	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:              booking.ID,
		ServiceID:       booking.ServiceID,
		ContractorID:    booking.ContractorID,
		ClientID:        booking.ClientID,
		ScheduledAt:     booking.ScheduledAt,
		EndsAt:          booking.EndsAt,
		DurationMinutes: booking.DurationMinutes,
		Status:          string(booking.Status),
		TotalPrice:      booking.TotalPrice,
		Notes:           booking.Notes,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}

	// Include service info if preloaded
	if booking.Service.ID != 0 {
		response.Service = &dto.ServiceSummary{
			ID:              booking.Service.ID,
			Title:           booking.Service.Title,
			DurationMinutes: booking.Service.Duration(),
			Price:           booking.Service.Price,
		}
	}
	if booking.Client.ID != uuid.Nil {
		response.Client = UserToResponse(&booking.Client)
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
