package api

import (
	"github.com/hackgods/agent-crm-scheduling/internal/appointment"
	"github.com/hackgods/agent-crm-scheduling/internal/db"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ConflictResponse is returned with 409 when a booking overlaps existing
// appointments.
type ConflictResponse struct {
	Error     string                     `json:"error"`
	Details   string                     `json:"details,omitempty"`
	Conflicts appointment.ConflictResult `json:"conflicts"`
}

// MutationResponse is the envelope for create, delete, complete and status
// changes.
type MutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func mutationResponse(res db.MutationResult, data any) MutationResponse {
	return MutationResponse{
		Success: res.Success,
		Message: res.Message,
		ID:      res.ID,
		Data:    data,
	}
}

type CompleteReminderRequest struct {
	Notes *string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ValidatePhoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}
