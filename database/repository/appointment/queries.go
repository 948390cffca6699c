// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"context"
	"fmt"

	"wellbook/models"
	"wellbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byTime = bson.D{{Key: "date", Value: 1}, {Key: "appointment_time", Value: 1}}

func (r *mongoAppointmentRepo) ListByProfessionalAndDate(ctx context.Context, professionalID, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{"professional_id": professionalID, "date": date}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(byTime))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appts := []models.Appointment{}
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) ListByPatient(ctx context.Context, patientID, status string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{"patient_id": patientID}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(byTime))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch patient appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appts := []models.Appointment{}
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// ActiveSlots returns the time extents of every non-cancelled appointment a
// professional has on the given date.
func (r *mongoAppointmentRepo) ActiveSlots(ctx context.Context, professionalID, date string) ([]models.AppointmentSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	filter := bson.M{
		"professional_id": professionalID,
		"date":            date,
		"status":          bson.M{"$ne": models.AppointmentCancelled},
	}
	projection := bson.M{"_id": 0, "appointment_time": 1, "duration_minutes": 1}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetProjection(projection).SetSort(byTime))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booked slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.AppointmentSlot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding booked slots: %w", err)
	}
	return slots, nil
}
