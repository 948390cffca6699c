package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appointmentRepo "wellbook/database/repository/appointment"
	"wellbook/handlers"
	"wellbook/models"
	"wellbook/services/booking"
	"wellbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAppointments struct {
	createErr error
	checkErr  error
	lastActor models.Actor
	lastDate  string
	lastState string
}

func (s *stubAppointments) CheckConflict(_ context.Context, req models.CheckSlotRequest) (*models.ConflictResult, error) {
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	if req.AppointmentTime == "10:15" {
		return &models.ConflictResult{Conflict: true, ConflictingSlot: &models.AppointmentSlot{AppointmentTime: "10:00", DurationMinutes: 30}}, nil
	}
	return &models.ConflictResult{}, nil
}

func (s *stubAppointments) CreateAppointment(_ context.Context, req models.CreateAppointmentRequest, actor models.Actor) (*models.BookingResult, error) {
	s.lastActor = actor
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.BookingResult{
		Appointment: &models.Appointment{
			ID:              "a1",
			ProfessionalID:  req.ProfessionalID,
			PatientID:       actor.ID,
			Date:            req.Date,
			AppointmentTime: req.AppointmentTime,
			DurationMinutes: req.DurationMinutes,
			Status:          models.AppointmentScheduled,
		},
		PaymentClientSecret: "secret",
	}, nil
}

func (s *stubAppointments) GetAppointment(_ context.Context, id string, actor models.Actor) (*models.Appointment, error) {
	switch id {
	case "a1":
		return &models.Appointment{ID: "a1", PatientID: actor.ID}, nil
	case "theirs":
		return nil, booking.ErrForbidden
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (s *stubAppointments) ListProfessionalDay(_ context.Context, professionalID, date string) ([]models.Appointment, error) {
	s.lastDate = date
	return []models.Appointment{{ID: "a1", ProfessionalID: professionalID, Date: date}}, nil
}

func (s *stubAppointments) ListPatientAppointments(_ context.Context, patientID, status string) ([]models.Appointment, error) {
	s.lastState = status
	return []models.Appointment{{ID: "a1", PatientID: patientID}}, nil
}

func (s *stubAppointments) CancelAppointment(_ context.Context, id string, _ models.Actor) (*models.Appointment, error) {
	if id == "done" {
		return nil, booking.ErrAlreadyCancelled
	}
	return &models.Appointment{ID: id, Status: models.AppointmentCancelled}, nil
}

type stubDevices struct {
	registered []string
}

func (s *stubDevices) NotifyAccount(context.Context, string, string, string, map[string]string) error {
	return nil
}

func (s *stubDevices) RegisterDevice(_ context.Context, accountID, role, fcmToken, _ string) error {
	s.registered = append(s.registered, accountID+"/"+role+"/"+fcmToken)
	return nil
}

func newTestRouter(appts *stubAppointments, devices *stubDevices) *gin.Engine {
	r := gin.New()
	r.Use(utils.ErrorHandler())
	hb := handlers.NewHandlerBundle(handlers.NewAppointmentHandler(appts), handlers.NewDeviceHandler(devices))
	RegisterRoutes(r, hb, 1000)
	return r
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(sub, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validCreate() gin.H {
	return gin.H{
		"professional_id":  "pro-1",
		"date":             "2026-03-02",
		"appointment_time": "10:00",
		"duration_minutes": 30,
	}
}

func TestCreateAppointmentRoute(t *testing.T) {
	appts := &stubAppointments{}
	r := newTestRouter(appts, &stubDevices{})
	patient := token(t, "pat-1", models.RolePatient)

	w := do(r, http.MethodPost, "/api/appointments", patient, validCreate())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Appointment         models.Appointment `json:"appointment"`
		PaymentClientSecret string             `json:"paymentClientSecret"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a1", resp.Appointment.ID)
	assert.Equal(t, "secret", resp.PaymentClientSecret)
	assert.Equal(t, models.Actor{ID: "pat-1", Role: models.RolePatient}, appts.lastActor)
}

func TestCreateAppointmentRoute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"conflict", &booking.ConflictError{Slot: "09:30"}, http.StatusConflict},
		{"locked", booking.ErrBookingInProgress, http.StatusLocked},
		{"validation", &booking.ValidationError{Field: "duration_minutes", Message: "must be between 1 and 720"}, http.StatusBadRequest},
		{"forbidden", booking.ErrForbidden, http.StatusForbidden},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubAppointments{createErr: tt.err}, &stubDevices{})
			w := do(r, http.MethodPost, "/api/appointments", token(t, "pat-1", models.RolePatient), validCreate())
			assert.Equal(t, tt.code, w.Code)

			var resp utils.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	t.Run("conflict message", func(t *testing.T) {
		r := newTestRouter(&stubAppointments{createErr: &booking.ConflictError{Slot: "09:30"}}, &stubDevices{})
		w := do(r, http.MethodPost, "/api/appointments", token(t, "pat-1", models.RolePatient), validCreate())

		var resp utils.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "slot unavailable", resp.Error)
	})
}

func TestCreateAppointmentRoute_RejectsBadInput(t *testing.T) {
	r := newTestRouter(&stubAppointments{}, &stubDevices{})
	patient := token(t, "pat-1", models.RolePatient)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/appointments", "", validCreate()).Code)

	missing := validCreate()
	delete(missing, "date")
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/appointments", patient, missing).Code)
}

func TestCheckSlotRoute(t *testing.T) {
	r := newTestRouter(&stubAppointments{}, &stubDevices{})
	tok := token(t, "pat-1", models.RolePatient)

	body := gin.H{"professional_id": "pro-1", "date": "2026-03-02", "appointment_time": "10:15", "duration_minutes": 15}
	w := do(r, http.MethodPost, "/api/appointments/check", tok, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"conflict":true,"conflicting_slot":{"appointment_time":"10:00","duration_minutes":30}}`, w.Body.String())

	body["appointment_time"] = "11:00"
	w = do(r, http.MethodPost, "/api/appointments/check", tok, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"conflict":false}`, w.Body.String())
}

func TestGetAndCancelRoutes(t *testing.T) {
	r := newTestRouter(&stubAppointments{}, &stubDevices{})
	tok := token(t, "pat-1", models.RolePatient)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/appointments/a1", tok, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/appointments/theirs", tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/appointments/nope", tok, nil).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/appointments/a1", tok, nil).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodDelete, "/api/appointments/done", tok, nil).Code)
}

func TestMyAppointmentsRoute(t *testing.T) {
	appts := &stubAppointments{}
	r := newTestRouter(appts, &stubDevices{})

	w := do(r, http.MethodGet, "/api/appointments/mine?status=scheduled", token(t, "pat-1", models.RolePatient), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AppointmentScheduled, appts.lastState)

	w = do(r, http.MethodGet, "/api/appointments/mine", token(t, "pro-1", models.RoleProfessional), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProfessionalDayRoute(t *testing.T) {
	appts := &stubAppointments{}
	r := newTestRouter(appts, &stubDevices{})
	pro := token(t, "pro-1", models.RoleProfessional)

	w := do(r, http.MethodGet, "/api/professionals/pro-1/appointments?date=2026-03-02", pro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-03-02", appts.lastDate)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/professionals/pro-2/appointments?date=2026-03-02", pro, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/professionals/pro-1/appointments", pro, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/professionals/pro-1/appointments?date=2026-03-02", token(t, "pat-1", models.RolePatient), nil).Code)

	admin := token(t, "adm", models.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/professionals/pro-2/appointments?date=2026-03-02", admin, nil).Code)
}

func TestDeviceRoute(t *testing.T) {
	devices := &stubDevices{}
	r := newTestRouter(&stubAppointments{}, devices)
	tok := token(t, "pro-1", models.RoleProfessional)

	w := do(r, http.MethodPut, "/api/devices/fcm-token", tok, gin.H{"fcm_token": "tok-1", "platform": "ios"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"pro-1/professional/tok-1"}, devices.registered)

	w = do(r, http.MethodPut, "/api/devices/fcm-token", tok, gin.H{"platform": "ios"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(&stubAppointments{}, &stubDevices{})
	w := do(r, http.MethodGet, "/health", "", nil)

	// No monitor has run, so no dependency has been seen healthy.
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
