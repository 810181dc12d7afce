package services

import (
	"context"
	"testing"
	"time"

	"SahayCare/internal/core/domain"

	"github.com/google/uuid"
)

func TestAssignmentEngine_PicksLowestWorkload(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	beat := ptr(uuid.New())
	station := ptr(uuid.New())

	busy := h.addOfficer(beat, station, true)
	idle := h.addOfficer(beat, station, true)

	citizen := h.addCitizen(beat, station, nil)
	for i := 0; i < 3; i++ {
		h.addVisit(citizen.ID, busy.ID, testStart.Add(time.Duration(i)*time.Hour), 30, domain.VisitScheduled, domain.VisitRoutine)
	}
	h.addVisit(citizen.ID, idle.ID, testStart, 30, domain.VisitScheduled, domain.VisitRoutine)

	selected, err := h.assignment.SelectOfficer(ctx, h.store, beat, station, nil)
	if err != nil {
		t.Fatalf("SelectOfficer failed: %v", err)
	}
	if selected == nil || selected.ID != idle.ID {
		t.Fatalf("Expected the idle officer, got %+v", selected)
	}
}

func TestAssignmentEngine_PrefersBeatMatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	station := ptr(uuid.New())
	citizenBeat := ptr(uuid.New())
	otherBeat := ptr(uuid.New())

	onBeat := h.addOfficer(citizenBeat, station, true)
	offBeat := h.addOfficer(otherBeat, station, true)

	// The on-beat officer is busier, but beat affinity wins over workload.
	citizen := h.addCitizen(citizenBeat, station, nil)
	for i := 0; i < 4; i++ {
		h.addVisit(citizen.ID, onBeat.ID, testStart.Add(time.Duration(i)*time.Hour), 30, domain.VisitScheduled, domain.VisitRoutine)
	}
	_ = offBeat

	selected, err := h.assignment.SelectOfficer(ctx, h.store, citizenBeat, station, nil)
	if err != nil {
		t.Fatalf("SelectOfficer failed: %v", err)
	}
	if selected == nil || selected.ID != onBeat.ID {
		t.Fatalf("Expected the on-beat officer, got %+v", selected)
	}
}

func TestAssignmentEngine_NoCandidates(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	station := ptr(uuid.New())
	beat := ptr(uuid.New())

	// Inactive and beat-less officers are not eligible.
	h.addOfficer(beat, station, false)
	h.addOfficer(nil, station, true)

	selected, err := h.assignment.SelectOfficer(ctx, h.store, beat, station, nil)
	if err != nil {
		t.Fatalf("SelectOfficer failed: %v", err)
	}
	if selected != nil {
		t.Fatalf("Expected no officer, got %+v", selected)
	}
}

func TestAssignmentEngine_NoStation(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	selected, err := h.assignment.SelectOfficer(ctx, h.store, nil, nil, nil)
	if err != nil {
		t.Fatalf("SelectOfficer failed: %v", err)
	}
	if selected != nil {
		t.Fatalf("Expected no officer for a citizen without a station, got %+v", selected)
	}
}

func TestAssignmentEngine_TieKeepsFirstEncountered(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	beat := ptr(uuid.New())
	station := ptr(uuid.New())

	first := h.addOfficer(beat, station, true)
	h.addOfficer(beat, station, true)

	selected, err := h.assignment.SelectOfficer(ctx, h.store, beat, station, nil)
	if err != nil {
		t.Fatalf("SelectOfficer failed: %v", err)
	}
	if selected == nil || selected.ID != first.ID {
		t.Fatalf("Equal workloads must keep the first-created officer, got %+v", selected)
	}
}

func TestAssignmentEngine_ExcludesOfficer(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	beat := ptr(uuid.New())
	station := ptr(uuid.New())

	departing := h.addOfficer(beat, station, true)

	selected, err := h.assignment.SelectOfficer(ctx, h.store, beat, station, &departing.ID)
	if err != nil {
		t.Fatalf("SelectOfficer failed: %v", err)
	}
	if selected != nil {
		t.Fatalf("The excluded officer must never be selected, got %+v", selected)
	}
}

func TestAssignmentEngine_AssignOfficerToCitizen(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	beat := ptr(uuid.New())
	station := ptr(uuid.New())

	officer := h.addOfficer(beat, station, true)
	citizen := h.addCitizen(beat, station, nil)

	assigned, err := h.assignment.AssignOfficerToCitizen(ctx, h.store, citizen, nil)
	if err != nil {
		t.Fatalf("AssignOfficerToCitizen failed: %v", err)
	}
	if assigned == nil || *assigned != officer.ID {
		t.Fatalf("Expected assignment to officer %s, got %v", officer.ID, assigned)
	}

	stored, _ := h.store.Citizens().GetByID(ctx, citizen.ID)
	if stored.AssignedOfficerID == nil || *stored.AssignedOfficerID != officer.ID {
		t.Fatal("Assignment was not persisted")
	}
}
