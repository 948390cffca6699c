package booking

import (
	"context"
	"fmt"
	"time"

	"wellbook/models"

	"go.uber.org/zap"
)

// CheckConflict is the advisory pre-submit check. It reads booked slots
// through the cache and takes no lock; CreateAppointment re-validates.
func (s *DefaultAppointmentService) CheckConflict(ctx context.Context, req models.CheckSlotRequest) (*models.ConflictResult, error) {
	if err := ValidateCheckRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.cachedSlots(ctx, req.ProfessionalID, req.Date)
	if err != nil {
		return nil, err
	}

	result := &models.ConflictResult{}
	if idx, ok := FirstOverlap(req.Slot(), existing); ok {
		conflicting := existing[idx]
		result.Conflict = true
		result.ConflictingSlot = &conflicting
	}
	return result, nil
}

// CreateAppointment re-checks the professional's day under the booking lock
// and persists the appointment when the candidate slot is free.
func (s *DefaultAppointmentService) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest, actor models.Actor) (*models.BookingResult, error) {
	if err := ValidateAppointmentRequest(req); err != nil {
		return nil, err
	}
	patientID, err := resolvePatient(req, actor)
	if err != nil {
		return nil, err
	}
	startsAt, err := s.startTime(req.Date, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, newValidationError("appointment_time", "appointment must start in the future")
	}

	appt := &models.Appointment{
		ProfessionalID:  req.ProfessionalID,
		PatientID:       patientID,
		ServiceName:     req.ServiceName,
		Date:            req.Date,
		AppointmentTime: req.AppointmentTime,
		DurationMinutes: req.DurationMinutes,
		Status:          models.AppointmentScheduled,
		Notes:           req.Notes,
	}
	if err := s.reserve(ctx, appt); err != nil {
		return nil, err
	}

	result := &models.BookingResult{Appointment: appt}
	if err := s.takeDeposit(ctx, appt, result); err != nil {
		return nil, err
	}

	s.afterBooking(ctx, appt, startsAt)
	return result, nil
}

// reserve runs the overlap check and the insert while holding the lock for
// the professional's date.
func (s *DefaultAppointmentService) reserve(ctx context.Context, appt *models.Appointment) error {
	logger := s.logger()

	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, appt.ProfessionalID, appt.Date)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release booking lock",
					zap.String("professional", appt.ProfessionalID),
					zap.String("date", appt.Date),
					zap.Error(err))
			}
		}()
	}

	existing, err := s.Repo.ActiveSlots(ctx, appt.ProfessionalID, appt.Date)
	if err != nil {
		return fmt.Errorf("failed to load booked slots: %w", err)
	}
	s.warnMalformed(appt.ProfessionalID, appt.Date, existing)

	if idx, ok := FirstOverlap(appt.Slot(), existing); ok {
		logger.Info("Booking rejected: slot overlaps existing appointment",
			zap.String("professional", appt.ProfessionalID),
			zap.String("date", appt.Date),
			zap.String("candidate", appt.AppointmentTime),
			zap.String("existing", existing[idx].AppointmentTime))
		return &ConflictError{Slot: existing[idx].AppointmentTime}
	}

	if err := s.Repo.Create(ctx, appt); err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	s.invalidate(ctx, appt.ProfessionalID, appt.Date)
	return nil
}

// takeDeposit charges the configured deposit. A failed payment cancels the
// appointment so the slot is freed again.
func (s *DefaultAppointmentService) takeDeposit(ctx context.Context, appt *models.Appointment, result *models.BookingResult) error {
	if s.Payments == nil || s.DepositAmountCents <= 0 {
		return nil
	}

	deposit, err := s.Payments.CreateDeposit(ctx, models.DepositRequest{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		AmountCents:   s.DepositAmountCents,
		Currency:      s.DepositCurrency,
		Description:   fmt.Sprintf("Deposit for %s on %s at %s", serviceLabel(appt), appt.Date, appt.AppointmentTime),
	})
	if err != nil {
		if cErr := s.Repo.UpdateStatus(ctx, appt.ID, models.AppointmentCancelled); cErr != nil {
			s.logger().Error("Failed to cancel appointment after deposit failure",
				zap.String("appointment", appt.ID), zap.Error(cErr))
		}
		s.invalidate(ctx, appt.ProfessionalID, appt.Date)
		return fmt.Errorf("deposit payment failed: %w", err)
	}

	if err := s.Repo.SetPaymentIntent(ctx, appt.ID, deposit.PaymentIntentID); err != nil {
		s.logger().Error("Failed to record payment intent",
			zap.String("appointment", appt.ID), zap.Error(err))
	}
	appt.PaymentIntentID = deposit.PaymentIntentID
	result.PaymentClientSecret = deposit.ClientSecret
	return nil
}

// afterBooking sends the best-effort side effects of a new booking.
func (s *DefaultAppointmentService) afterBooking(ctx context.Context, appt *models.Appointment, startsAt time.Time) {
	logger := s.logger()

	if s.Notifier != nil {
		err := s.Notifier.NotifyAccount(ctx, appt.ProfessionalID,
			"New appointment booked",
			fmt.Sprintf("%s on %s at %s (%d min)", serviceLabel(appt), appt.Date, appt.AppointmentTime, appt.DurationMinutes),
			map[string]string{"type": "appointment_booked", "appointmentId": appt.ID},
		)
		if err != nil {
			logger.Warn("Failed to notify professional", zap.String("appointment", appt.ID), zap.Error(err))
		}
	}

	if s.Reminders == nil || s.ReminderLead <= 0 {
		return
	}
	fireAt := startsAt.Add(-s.ReminderLead)
	if !fireAt.After(s.now()) {
		return
	}
	payload := models.ReminderPayload{
		AccountID:     appt.PatientID,
		AppointmentID: appt.ID,
		Title:         "Upcoming appointment",
		Body:          fmt.Sprintf("Your %s starts at %s", serviceLabel(appt), appt.AppointmentTime),
		FireDate:      fireAt.Format(time.RFC3339),
	}
	if err := s.Reminders.ScheduleReminder(ctx, payload, fireAt); err != nil {
		logger.Warn("Failed to schedule reminder", zap.String("appointment", appt.ID), zap.Error(err))
	}
}

func (s *DefaultAppointmentService) GetAppointment(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(appt, actor) {
		return nil, ErrForbidden
	}
	return appt, nil
}

func (s *DefaultAppointmentService) ListProfessionalDay(ctx context.Context, professionalID, date string) ([]models.Appointment, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.Repo.ListByProfessionalAndDate(ctx, professionalID, date)
}

func (s *DefaultAppointmentService) ListPatientAppointments(ctx context.Context, patientID, status string) ([]models.Appointment, error) {
	switch status {
	case "", models.AppointmentScheduled, models.AppointmentCancelled, models.AppointmentCompleted:
	default:
		return nil, newValidationError("status", "unknown appointment status")
	}
	return s.Repo.ListByPatient(ctx, patientID, status)
}

// CancelAppointment frees the slot of an appointment that has not started yet.
func (s *DefaultAppointmentService) CancelAppointment(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.AppointmentCancelled {
		return nil, ErrAlreadyCancelled
	}

	startsAt, err := s.startTime(appt.Date, appt.AppointmentTime)
	if err == nil && !startsAt.After(s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrAppointmentStarted, appt.ID)
	}

	if err := s.Repo.UpdateStatus(ctx, appt.ID, models.AppointmentCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	appt.Status = models.AppointmentCancelled
	s.invalidate(ctx, appt.ProfessionalID, appt.Date)

	if s.Reminders != nil {
		if err := s.Reminders.CancelReminder(ctx, appt.ID); err != nil {
			s.logger().Warn("Failed to cancel reminder", zap.String("appointment", appt.ID), zap.Error(err))
		}
	}

	if s.Notifier != nil {
		other := appt.ProfessionalID
		if actor.ID == appt.ProfessionalID {
			other = appt.PatientID
		}
		err := s.Notifier.NotifyAccount(ctx, other,
			"Appointment cancelled",
			fmt.Sprintf("%s on %s at %s was cancelled", serviceLabel(appt), appt.Date, appt.AppointmentTime),
			map[string]string{"type": "appointment_cancelled", "appointmentId": appt.ID},
		)
		if err != nil {
			s.logger().Warn("Failed to notify cancellation", zap.String("appointment", appt.ID), zap.Error(err))
		}
	}
	return appt, nil
}

// cachedSlots reads booked slots through the cache. Cache failures fall back
// to the store. The fill is written under the version seen before the store
// read, so it is discarded if a booking invalidated the date meanwhile.
func (s *DefaultAppointmentService) cachedSlots(ctx context.Context, professionalID, date string) ([]models.AppointmentSlot, error) {
	logger := s.logger()

	var (
		version   int64
		cacheable bool
	)
	if s.Cache != nil {
		slots, v, ok, err := s.Cache.Get(ctx, professionalID, date)
		switch {
		case err != nil:
			logger.Warn("Slot cache read failed", zap.Error(err))
		case ok:
			return slots, nil
		default:
			version, cacheable = v, true
		}
	}

	slots, err := s.Repo.ActiveSlots(ctx, professionalID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}
	s.warnMalformed(professionalID, date, slots)

	if cacheable {
		if err := s.Cache.Set(ctx, professionalID, date, version, slots); err != nil {
			logger.Warn("Slot cache write failed", zap.Error(err))
		}
	}
	return slots, nil
}

func (s *DefaultAppointmentService) invalidate(ctx context.Context, professionalID, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, professionalID, date); err != nil {
		s.logger().Warn("Slot cache invalidation failed",
			zap.String("professional", professionalID), zap.String("date", date), zap.Error(err))
	}
}

// warnMalformed logs stored slots whose time the overlap check would read as
// a degraded value. The slots are still checked as-is.
func (s *DefaultAppointmentService) warnMalformed(professionalID, date string, slots []models.AppointmentSlot) {
	for _, slot := range slots {
		if err := ValidateSlotTime(slot.AppointmentTime); err != nil {
			s.logger().Warn("Stored appointment has malformed time",
				zap.String("professional", professionalID),
				zap.String("date", date),
				zap.String("appointmentTime", slot.AppointmentTime))
		}
	}
}

func (s *DefaultAppointmentService) startTime(date, appointmentTime string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.location())
	if err != nil {
		return time.Time{}, newValidationError("date", "must be formatted YYYY-MM-DD")
	}
	return day.Add(time.Duration(SlotMinutes(appointmentTime)) * time.Minute), nil
}

// resolvePatient decides whom the appointment is for. Patients book for
// themselves; professionals book into their own calendar on a patient's
// behalf; admins may book anything.
func resolvePatient(req models.CreateAppointmentRequest, actor models.Actor) (string, error) {
	switch actor.Role {
	case models.RolePatient:
		if req.PatientID != "" && req.PatientID != actor.ID {
			return "", ErrForbidden
		}
		return actor.ID, nil
	case models.RoleProfessional:
		if req.ProfessionalID != actor.ID {
			return "", ErrForbidden
		}
	case models.RoleAdmin:
	default:
		return "", ErrForbidden
	}
	if req.PatientID == "" {
		return "", newValidationError("patient_id", "is required when booking on behalf of a patient")
	}
	return req.PatientID, nil
}

func canAccess(appt *models.Appointment, actor models.Actor) bool {
	return actor.IsAdmin() || actor.ID == appt.PatientID || actor.ID == appt.ProfessionalID
}

func serviceLabel(appt *models.Appointment) string {
	if appt.ServiceName != "" {
		return appt.ServiceName
	}
	return "appointment"
}
