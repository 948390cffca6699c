package booking

import (
	"context"
	"errors"
	"fmt"

	"wellbook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// DepositProcessor takes the up-front payment for a new appointment.
type DepositProcessor interface {
	CreateDeposit(ctx context.Context, req models.DepositRequest) (*models.Deposit, error)
}

// StripeDepositProcessor creates a Stripe PaymentIntent per deposit. It relies
// on stripe.Key being set at startup.
type StripeDepositProcessor struct {
	logger *zap.Logger
}

func NewStripeDepositProcessor(logger *zap.Logger) *StripeDepositProcessor {
	return &StripeDepositProcessor{logger: logger}
}

func (p *StripeDepositProcessor) CreateDeposit(ctx context.Context, req models.DepositRequest) (*models.Deposit, error) {
	if err := validateDepositRequest(req); err != nil {
		return nil, fmt.Errorf("invalid deposit request: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("deposit-" + req.AppointmentID)
	params.AddMetadata("appointment_id", req.AppointmentID)
	params.AddMetadata("patient_id", req.PatientID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	p.logger.Info("Deposit payment intent created",
		zap.String("appointment", req.AppointmentID),
		zap.String("paymentIntent", pi.ID))

	return &models.Deposit{
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
		Status:          string(pi.Status),
	}, nil
}

func validateDepositRequest(req models.DepositRequest) error {
	if req.AmountCents <= 0 {
		return errors.New("invalid deposit amount")
	}
	if req.AppointmentID == "" {
		return errors.New("missing appointment ID")
	}
	if req.Currency == "" {
		return errors.New("missing currency")
	}
	return nil
}
