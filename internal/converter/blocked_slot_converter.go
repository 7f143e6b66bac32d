package converter

import (
	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/domain/entity"
)

// BlockedSlotToResponse converts a BlockedSlot entity to BlockedSlotResponse DTO
func BlockedSlotToResponse(slot *entity.BlockedSlot) *dto.BlockedSlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.BlockedSlotResponse{
		ID:        slot.ID,
		Date:      slot.Date.Format("2006-01-02"),
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Reason:    slot.Reason,
		CreatedAt: slot.CreatedAt,
	}
}

func BlockedSlotsToResponses(slots []entity.BlockedSlot) []dto.BlockedSlotResponse {
	responses := make([]dto.BlockedSlotResponse, len(slots))
	for i := range slots {
		responses[i] = *BlockedSlotToResponse(&slots[i])
	}
	return responses
}

func BlockedSlotToConflict(slot entity.BlockedSlot) dto.BlockedSlotConflict {
	return dto.BlockedSlotConflict{
		ID:        slot.ID,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Reason:    slot.Reason,
	}
}
