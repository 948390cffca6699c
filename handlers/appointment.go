package handlers

import (
	"errors"
	"net/http"

	appointmentRepo "wellbook/database/repository/appointment"
	"wellbook/middleware"
	"wellbook/models"
	"wellbook/services/booking"
	"wellbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	Service booking.AppointmentService
}

func NewAppointmentHandler(svc booking.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

// CheckSlotHandler answers whether a candidate slot collides with the
// professional's booked slots. The answer is advisory.
func (h *AppointmentHandler) CheckSlotHandler(c *gin.Context) {
	var req models.CheckSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Service.CheckConflict(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, "Failed to check slot", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Service.CreateAppointment(c.Request.Context(), req, actor)
	if err != nil {
		writeServiceError(c, "Failed to book appointment", err)
		return
	}

	utils.GetLogger().Info("Appointment booked",
		zap.String("appointment", result.Appointment.ID),
		zap.String("professional", result.Appointment.ProfessionalID),
		zap.String("by", actor.ID))

	resp := gin.H{"appointment": result.Appointment}
	if result.PaymentClientSecret != "" {
		resp["paymentClientSecret"] = result.PaymentClientSecret
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	appt, err := h.Service.GetAppointment(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeServiceError(c, "Failed to fetch appointment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) CancelAppointmentHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	appt, err := h.Service.CancelAppointment(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeServiceError(c, "Failed to cancel appointment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled", "appointment": appt})
}

// MyAppointmentsHandler lists the calling patient's appointments, optionally
// filtered by ?status=.
func (h *AppointmentHandler) MyAppointmentsHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	appts, err := h.Service.ListPatientAppointments(c.Request.Context(), actor.ID, c.Query("status"))
	if err != nil {
		writeServiceError(c, "Failed to list appointments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// ProfessionalDayHandler lists a professional's appointments on ?date=.
// Professionals may only read their own calendar.
func (h *AppointmentHandler) ProfessionalDayHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	professionalID := c.Param("id")
	if !actor.IsAdmin() && actor.ID != professionalID {
		utils.JSONError(c, http.StatusForbidden, "Forbidden", booking.ErrForbidden.Error())
		return
	}

	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing date", "query parameter 'date' is required")
		return
	}

	appts, err := h.Service.ListProfessionalDay(c.Request.Context(), professionalID, date)
	if err != nil {
		writeServiceError(c, "Failed to list appointments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "appointments": appts})
}

// writeServiceError maps booking errors onto HTTP status codes.
func writeServiceError(c *gin.Context, message string, err error) {
	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", vErr.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		utils.JSONError(c, http.StatusConflict, booking.ErrSlotUnavailable.Error(), err.Error())
	case errors.Is(err, booking.ErrBookingInProgress):
		utils.JSONError(c, http.StatusLocked, "Booking in progress", err.Error())
	case errors.Is(err, booking.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		utils.JSONError(c, http.StatusNotFound, "Appointment not found", err.Error())
	case errors.Is(err, booking.ErrAlreadyCancelled), errors.Is(err, booking.ErrAppointmentStarted):
		utils.JSONError(c, http.StatusConflict, message, err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, message, err.Error())
	}
}
