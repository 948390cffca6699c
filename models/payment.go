package models

// DepositRequest describes the up-front payment taken for an appointment.
type DepositRequest struct {
	AppointmentID string
	PatientID     string
	AmountCents   int64
	Currency      string
	Description   string
}

// Deposit is the payment intent created for a DepositRequest.
type Deposit struct {
	PaymentIntentID string
	ClientSecret    string
	Status          string
}
