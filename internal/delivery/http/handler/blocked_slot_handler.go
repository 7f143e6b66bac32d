package handler

import (
	"net/http"

	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/usecase"
	"marketplace-booking/pkg/response"
	"marketplace-booking/pkg/validator"

	"github.com/sirupsen/logrus"
)

type BlockedSlotHandler struct {
	blockedTimeUsecase usecase.BlockedTimeUsecase
	validator          *validator.CustomValidator
	log                *logrus.Logger
}

func NewBlockedSlotHandler(blockedTimeUsecase usecase.BlockedTimeUsecase, validator *validator.CustomValidator, log *logrus.Logger) *BlockedSlotHandler {
	return &BlockedSlotHandler{
		blockedTimeUsecase: blockedTimeUsecase,
		validator:          validator,
		log:                log,
	}
}

func (h *BlockedSlotHandler) CreateBlockedSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBlockedSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slot, err := h.blockedTimeUsecase.CreateBlockedSlot(r.Context(), &req)
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusCreated, "Time blocked successfully", slot)
}

func (h *BlockedSlotHandler) GetBlockedSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.blockedTimeUsecase.GetBlockedSlots(r.Context())
	if err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Blocked slots retrieved successfully", slots)
}

func (h *BlockedSlotHandler) DeleteBlockedSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := pathID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid blocked slot ID", nil)
		return
	}

	if err := h.blockedTimeUsecase.DeleteBlockedSlot(r.Context(), slotID); err != nil {
		response.FromError(w, h.log, err)
		return
	}

	response.Success(w, http.StatusOK, "Blocked slot removed successfully", nil)
}
