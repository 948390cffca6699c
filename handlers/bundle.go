package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers that routes registers.
type HandlerBundle struct {
	// Appointment endpoints
	CheckSlotHandler         gin.HandlerFunc
	CreateAppointmentHandler gin.HandlerFunc
	GetAppointmentHandler    gin.HandlerFunc
	CancelAppointmentHandler gin.HandlerFunc
	MyAppointmentsHandler    gin.HandlerFunc
	ProfessionalDayHandler   gin.HandlerFunc

	// Device endpoints
	UpdateFCMTokenHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

func NewHandlerBundle(appts *AppointmentHandler, devices *DeviceHandler) *HandlerBundle {
	return &HandlerBundle{
		CheckSlotHandler:         appts.CheckSlotHandler,
		CreateAppointmentHandler: appts.CreateAppointmentHandler,
		GetAppointmentHandler:    appts.GetAppointmentHandler,
		CancelAppointmentHandler: appts.CancelAppointmentHandler,
		MyAppointmentsHandler:    appts.MyAppointmentsHandler,
		ProfessionalDayHandler:   appts.ProfessionalDayHandler,
		UpdateFCMTokenHandler:    devices.UpdateFCMTokenHandler,
		HealthHandler:            HealthHandler,
	}
}
