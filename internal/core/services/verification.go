package services

import (
	"context"
	"errors"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VerificationWorkflow orchestrates the verification request lifecycle:
// creation, auto-assignment with a companion field visit, the field-completion
// approval cascade, and the manual administrative override.
type VerificationWorkflow struct {
	store      ports.Store
	assignment *AssignmentEngine
	visits     *VisitService
	notifier   ports.Notifier
	bus        ports.EventBus
	clock      ports.Clock
	log        zerolog.Logger
}

func NewVerificationWorkflow(
	store ports.Store,
	assignment *AssignmentEngine,
	visits *VisitService,
	notifier ports.Notifier,
	bus ports.EventBus,
	clock ports.Clock,
	baseLogger *zerolog.Logger,
) *VerificationWorkflow {
	return &VerificationWorkflow{
		store:      store,
		assignment: assignment,
		visits:     visits,
		notifier:   notifier,
		bus:        bus,
		clock:      clock,
		log:        baseLogger.With().Str("component", "verification_workflow").Logger(),
	}
}

// CreateRequestParams carries validated input for a new verification request.
type CreateRequestParams struct {
	EntityType      domain.VerificationEntityType
	EntityID        uuid.UUID
	SeniorCitizenID uuid.UUID
	RequestedBy     *uuid.UUID
	Priority        domain.VerificationPriority
	Remarks         *string
}

// CreateRequest persists a Pending request, notifies the citizen, then
// attempts auto-assignment. A request left Pending because no officer was
// eligible is a normal, queryable state for manual assignment — not a failure.
func (w *VerificationWorkflow) CreateRequest(ctx context.Context, params CreateRequestParams) (*domain.VerificationRequest, error) {
	citizen, err := w.store.Citizens().GetByID(ctx, params.SeniorCitizenID)
	if err != nil {
		return nil, err
	}
	if citizen == nil {
		return nil, &domain.NotFoundError{Entity: "citizen", ID: params.SeniorCitizenID}
	}

	if params.Priority == "" {
		params.Priority = domain.PriorityNormal
	}
	now := w.clock.Now()
	req := &domain.VerificationRequest{
		ID:              uuid.New(),
		EntityType:      params.EntityType,
		EntityID:        params.EntityID,
		SeniorCitizenID: params.SeniorCitizenID,
		Status:          domain.VerificationPending,
		Priority:        params.Priority,
		RequestedBy:     params.RequestedBy,
		Remarks:         params.Remarks,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := w.store.Verifications().Create(ctx, req); err != nil {
		return nil, err
	}
	w.log.Info().
		Str("request_id", req.ID.String()).
		Str("citizen_id", citizen.ID.String()).
		Str("entity_type", string(params.EntityType)).
		Msg("Verification request created")

	if citizen.PhoneNumber != nil {
		w.notifier.SendVerificationRequested(ctx, req, *citizen.PhoneNumber)
	}

	if err := w.autoAssign(ctx, req, citizen); err != nil {
		return nil, err
	}
	return req, nil
}

// autoAssign tries to hand the request to a load-balanced officer and create
// the companion Verification visit in one transaction. Two soft outcomes
// leave the request Pending: no eligible officer, and a schedule conflict at
// the current instant for the selected officer.
func (w *VerificationWorkflow) autoAssign(ctx context.Context, req *domain.VerificationRequest, citizen *domain.Citizen) error {
	err := w.store.WithinTx(ctx, func(tx ports.Store) error {
		officer, err := w.assignment.SelectOfficer(ctx, tx, citizen.BeatID, citizen.PoliceStationID, nil)
		if err != nil {
			return err
		}
		if officer == nil {
			w.log.Info().
				Str("request_id", req.ID.String()).
				Msg("Verification request left pending: no eligible officer")
			return nil
		}

		now := w.clock.Now()
		visit, err := w.visits.scheduleInTx(ctx, tx, ScheduleVisitParams{
			SeniorCitizenID: req.SeniorCitizenID,
			OfficerID:       officer.ID,
			ScheduledDate:   now,
			VisitType:       domain.VisitVerification,
		})
		if err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				w.log.Info().
					Str("request_id", req.ID.String()).
					Str("officer_id", officer.ID.String()).
					Msg("Verification request left pending: selected officer has a schedule conflict")
				return nil
			}
			return err
		}

		if err := domain.ValidateTransition(domain.KindCitizenVerification, string(req.Status), string(domain.VerificationInProgress)); err != nil {
			return err
		}
		req.Status = domain.VerificationInProgress
		req.AssignedTo = &officer.ID
		req.AssignedAt = &now
		req.VisitID = &visit.ID
		req.UpdatedAt = now
		return tx.Verifications().Update(ctx, req)
	})
	if err != nil {
		return err
	}

	if req.AssignedTo != nil {
		w.log.Info().
			Str("request_id", req.ID.String()).
			Str("officer_id", req.AssignedTo.String()).
			Msg("Verification request auto-assigned")
	}
	return nil
}

// ApplyFieldCompletion cascades a completed Verification visit into approval:
// the request becomes Approved, the citizen becomes Verified, and a digital
// card is issued if absent. Physical verification by an officer is sufficient
// for approval without a separate administrative click.
func (w *VerificationWorkflow) ApplyFieldCompletion(ctx context.Context, visit *domain.Visit) error {
	var req *domain.VerificationRequest
	err := w.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		req, err = tx.Verifications().GetByVisitID(ctx, visit.ID)
		if err != nil {
			return err
		}
		if req == nil {
			// Completed verification visit with no linked request: nothing
			// to cascade.
			w.log.Warn().Str("visit_id", visit.ID.String()).Msg("No verification request linked to completed visit")
			return nil
		}
		if req.Status == domain.VerificationApproved || req.Status == domain.VerificationRejected {
			return nil
		}

		if err := domain.ValidateTransition(domain.KindCitizenVerification, string(req.Status), string(domain.VerificationApproved)); err != nil {
			return err
		}
		now := w.clock.Now()
		method := "field_visit"
		req.Status = domain.VerificationApproved
		req.VerifiedBy = &visit.OfficerID
		req.VerificationMethod = &method
		req.UpdatedAt = now
		if err := tx.Verifications().Update(ctx, req); err != nil {
			return err
		}

		return w.applyCitizenOutcome(ctx, tx, req, true)
	})
	if err != nil || req == nil {
		return err
	}

	w.notifyOutcome(ctx, req)
	return nil
}

// UpdateStatusParams is the manual admin override input.
type UpdateStatusParams struct {
	RequestID          uuid.UUID
	Status             domain.VerificationStatus
	VerifiedBy         *uuid.UUID
	VerificationMethod *string
	VerificationNotes  *string
	RejectionReason    *string
}

// UpdateStatus applies an administrative status change, enforcing the
// verification state machine and propagating terminal outcomes to the
// underlying entity.
func (w *VerificationWorkflow) UpdateStatus(ctx context.Context, params UpdateStatusParams) (*domain.VerificationRequest, error) {
	var req *domain.VerificationRequest
	err := w.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		req, err = tx.Verifications().GetByID(ctx, params.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return &domain.NotFoundError{Entity: "verification request", ID: params.RequestID}
		}

		if err := domain.ValidateTransition(domain.KindCitizenVerification, string(req.Status), string(params.Status)); err != nil {
			return err
		}

		req.Status = params.Status
		if params.VerifiedBy != nil {
			req.VerifiedBy = params.VerifiedBy
		}
		if params.VerificationMethod != nil {
			req.VerificationMethod = params.VerificationMethod
		}
		if params.VerificationNotes != nil {
			req.VerificationNotes = params.VerificationNotes
		}
		if params.RejectionReason != nil {
			req.RejectionReason = params.RejectionReason
		}
		req.UpdatedAt = w.clock.Now()
		if err := tx.Verifications().Update(ctx, req); err != nil {
			return err
		}

		switch params.Status {
		case domain.VerificationApproved:
			return w.applyCitizenOutcome(ctx, tx, req, true)
		case domain.VerificationRejected:
			return w.applyCitizenOutcome(ctx, tx, req, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.log.Info().
		Str("request_id", req.ID.String()).
		Str("status", string(req.Status)).
		Msg("Verification request status updated")
	if req.Status == domain.VerificationApproved || req.Status == domain.VerificationRejected {
		w.notifyOutcome(ctx, req)
	}
	return req, nil
}

// applyCitizenOutcome propagates a terminal verification outcome. Citizen
// records are cascaded in place; other entity kinds are owned by modules
// outside this core, so their outcome is published for the owning module.
func (w *VerificationWorkflow) applyCitizenOutcome(ctx context.Context, tx ports.Store, req *domain.VerificationRequest, approved bool) error {
	if req.EntityType != domain.EntitySeniorCitizen {
		w.bus.Publish(ctx, ports.TopicEntityOutcome, req)
		return nil
	}

	citizen, err := tx.Citizens().GetByID(ctx, req.SeniorCitizenID)
	if err != nil {
		return err
	}
	if citizen == nil {
		return &domain.NotFoundError{Entity: "citizen", ID: req.SeniorCitizenID}
	}

	now := w.clock.Now()
	if approved {
		citizen.IDVerificationStatus = domain.IDVerificationVerified
		if citizen.Status != domain.CitizenVerified {
			if err := domain.ValidateTransition(domain.KindCitizen, string(citizen.Status), string(domain.CitizenVerified)); err != nil {
				return err
			}
			citizen.Status = domain.CitizenVerified
		}
		// Invariant: idVerificationStatus = Verified implies an issued card.
		if citizen.DigitalCardNumber == nil {
			card := domain.NewDigitalCardNumber(now)
			citizen.DigitalCardNumber = &card
		}
		citizen.DigitalCardIssued = true
	} else {
		citizen.IDVerificationStatus = domain.IDVerificationRejected
	}
	citizen.UpdatedAt = now
	if err := tx.Citizens().Update(ctx, citizen); err != nil {
		return err
	}

	w.bus.Publish(ctx, ports.TopicCitizenStatusChanged, citizen)
	return nil
}

func (w *VerificationWorkflow) notifyOutcome(ctx context.Context, req *domain.VerificationRequest) {
	citizen, err := w.store.Citizens().GetByID(ctx, req.SeniorCitizenID)
	if err != nil || citizen == nil || citizen.PhoneNumber == nil {
		return
	}
	w.notifier.SendVerificationOutcome(ctx, req, *citizen.PhoneNumber)
	w.bus.Publish(ctx, ports.TopicVerificationOutcome, req)
}
