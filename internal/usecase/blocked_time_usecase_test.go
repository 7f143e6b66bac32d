package usecase

import (
	"errors"
	"testing"

	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/domain/entity"
	"marketplace-booking/pkg/apperror"
)

func TestCreateBlockedSlotOverlapListsExisting(t *testing.T) {
	f := newFixture()

	first, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{
		Date: "2026-10-20", StartTime: "13:00", EndTime: "14:00",
	})
	if err != nil {
		t.Fatalf("first block: %v", err)
	}

	_, err = f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{
		Date: "2026-10-20", StartTime: "13:30", EndTime: "14:30",
	})
	if !errors.Is(err, ErrBlockedSlotConflict) {
		t.Fatalf("err = %v, want blocked slot conflict", err)
	}
	conflicts, ok := apperror.From(err).Details.([]dto.BlockedSlotConflict)
	if !ok || len(conflicts) != 1 || conflicts[0].ID != first.ID {
		t.Errorf("details = %#v", apperror.From(err).Details)
	}

	// Touching ranges and other days are fine.
	if _, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{Date: "2026-10-20", StartTime: "14:00", EndTime: "15:00"}); err != nil {
		t.Errorf("adjacent block: %v", err)
	}
	if _, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{Date: "2026-10-21", StartTime: "13:30", EndTime: "14:30"}); err != nil {
		t.Errorf("other day: %v", err)
	}
}

func TestCreateBlockedSlotValidation(t *testing.T) {
	f := newFixture()

	if _, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{Date: "2026-10-20", StartTime: "14:00", EndTime: "13:00"}); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("reversed range: err = %v", err)
	}
	if _, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{Date: "2026-10-20", StartTime: "13:00", EndTime: "13:00"}); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("empty range: err = %v", err)
	}
	if _, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{Date: "20-10-2026", StartTime: "13:00", EndTime: "14:00"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad date: err = %v", err)
	}
}

func TestCreateBlockedSlotNormalizesAndAudits(t *testing.T) {
	f := newFixture()
	reason := "holiday"

	got, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{
		Date: "2026-10-20", StartTime: "9:00", EndTime: "10:30", Reason: &reason,
	})
	if err != nil {
		t.Fatalf("CreateBlockedSlot: %v", err)
	}
	if got.StartTime != "09:00" || got.EndTime != "10:30" || got.Date != "2026-10-20" {
		t.Errorf("slot = %+v", got)
	}
	if actions := f.store.auditActions(); len(actions) != 1 || actions[0] != entity.AuditActionBlockedSlotCreate {
		t.Errorf("audit = %v", actions)
	}
}

func TestGetBlockedSlotsFromToday(t *testing.T) {
	f := newFixture()
	f.store.putBlocked(entity.BlockedSlot{ContractorID: testContractorID, Date: monday.AddDate(0, 0, -1), StartTime: "10:00", EndTime: "11:00"})
	f.store.putBlocked(entity.BlockedSlot{ContractorID: testContractorID, Date: monday, StartTime: "06:00", EndTime: "07:00"})
	f.store.putBlocked(entity.BlockedSlot{ContractorID: testContractorID, Date: tuesday, StartTime: "10:00", EndTime: "11:00"})
	f.store.putBlocked(entity.BlockedSlot{ContractorID: 2, Date: tuesday, StartTime: "10:00", EndTime: "11:00"})

	got, err := f.blocked.GetBlockedSlots(f.contractorCtx())
	if err != nil {
		t.Fatalf("GetBlockedSlots: %v", err)
	}
	if got.Total != 2 || got.BlockedSlots[0].Date != "2026-10-19" || got.BlockedSlots[1].Date != "2026-10-20" {
		t.Errorf("blocked = %+v", got.BlockedSlots)
	}
}

func TestDeleteBlockedSlot(t *testing.T) {
	f := newFixture()
	future := f.store.putBlocked(entity.BlockedSlot{ContractorID: testContractorID, Date: tuesday, StartTime: "10:00", EndTime: "11:00"})
	started := f.store.putBlocked(entity.BlockedSlot{ContractorID: testContractorID, Date: monday, StartTime: "06:00", EndTime: "08:00"})
	foreign := f.store.putBlocked(entity.BlockedSlot{ContractorID: 2, Date: tuesday, StartTime: "10:00", EndTime: "11:00"})

	if err := f.blocked.DeleteBlockedSlot(f.contractorCtx(), started); !errors.Is(err, ErrBlockedSlotStarted) {
		t.Errorf("started: err = %v", err)
	}
	if err := f.blocked.DeleteBlockedSlot(f.contractorCtx(), foreign); !errors.Is(err, ErrBlockedSlotNotFound) {
		t.Errorf("foreign: err = %v", err)
	}
	if err := f.blocked.DeleteBlockedSlot(f.contractorCtx(), future); err != nil {
		t.Fatalf("future: %v", err)
	}
	if slot, _ := (memBlockedRepo{f.store}).FindByID(nil, future); slot != nil {
		t.Error("slot still stored")
	}
	if actions := f.store.auditActions(); len(actions) != 1 || actions[0] != entity.AuditActionBlockedSlotDelete {
		t.Errorf("audit = %v", actions)
	}
}

func TestBlockedSlotRemovesAvailableSlots(t *testing.T) {
	f := newFixture()
	if _, err := f.blocked.CreateBlockedSlot(f.contractorCtx(), &dto.CreateBlockedSlotRequest{Date: "2026-10-20", StartTime: "13:00", EndTime: "14:00"}); err != nil {
		t.Fatalf("CreateBlockedSlot: %v", err)
	}

	got, err := f.availability.GetAvailableSlots(f.clientCtx(), testServiceID)
	if err != nil {
		t.Fatalf("GetAvailableSlots: %v", err)
	}
	times := slotTimes(got.AvailableSlots, "2026-10-20")
	for _, gone := range []string{"12:30", "13:00", "13:30"} {
		if times[gone] {
			t.Errorf("%s offered despite block", gone)
		}
	}
	if !times["12:00"] || !times["14:00"] {
		t.Errorf("neighbours missing: %v", times)
	}
}
