package appointment

import (
	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled   Status = "Scheduled"
	StatusConfirmed   Status = "Confirmed"
	StatusInProgress  Status = "In Progress"
	StatusCompleted   Status = "Completed"
	StatusCancelled   Status = "Cancelled"
	StatusRescheduled Status = "Rescheduled"
)

var validStatuses = map[Status]struct{}{
	StatusScheduled: {}, StatusConfirmed: {}, StatusInProgress: {},
	StatusCompleted: {}, StatusCancelled: {}, StatusRescheduled: {},
}

func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

type Type string

const (
	TypeCall             Type = "Call"
	TypeMeeting          Type = "Meeting"
	TypeSiteVisit        Type = "Site Visit"
	TypePolicyReview     Type = "Policy Review"
	TypeClaimsProcessing Type = "Claims Processing"
)

var validTypes = map[Type]struct{}{
	TypeCall: {}, TypeMeeting: {}, TypeSiteVisit: {}, TypePolicyReview: {}, TypeClaimsProcessing: {},
}

func (t Type) Valid() bool {
	_, ok := validTypes[t]
	return ok
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Appointment is the wire shape of one appointment row.
type Appointment struct {
	AppointmentID string   `json:"appointmentId"`
	AgentID       string   `json:"agentId"`
	ClientID      string   `json:"clientId,omitempty"`
	ClientName    string   `json:"clientName,omitempty"`
	ClientPhone   string   `json:"clientPhone,omitempty"`
	ClientEmail   string   `json:"clientEmail,omitempty"`
	ClientAddress string   `json:"clientAddress,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Date          string   `json:"appointmentDate"`
	StartTime     *string  `json:"startTime"`
	EndTime       *string  `json:"endTime"`
	Location      string   `json:"location,omitempty"`
	Type          Type     `json:"type"`
	Status        Status   `json:"status"`
	Priority      Priority `json:"priority"`
	Notes         string   `json:"notes,omitempty"`
	ReminderSet   bool     `json:"reminderSet"`
	IsActive      bool     `json:"isActive"`
	CreatedDate   string   `json:"createdDate"`
	ModifiedDate  string   `json:"modifiedDate,omitempty"`
	FormattedTime string   `json:"formattedTime,omitempty"`
}

// ConflictResult is the outcome of a conflict check.
type ConflictResult struct {
	HasConflicts            bool          `json:"hasConflicts"`
	ConflictingAppointments []Appointment `json:"conflictingAppointments"`
	Message                 string        `json:"message"`
}

// WeekDay is one day of a week view. Days without appointments are kept.
type WeekDay struct {
	Date         string        `json:"date"`
	DayName      string        `json:"dayName"`
	Appointments []Appointment `json:"appointments"`
}

// CalendarDay is one date of a month that has at least one appointment.
type CalendarDay struct {
	Date             string        `json:"date"`
	Appointments     []Appointment `json:"appointments"`
	AppointmentCount int           `json:"appointmentCount"`
}

type PhoneValidation struct {
	IsValid         bool   `json:"isValid"`
	FormattedNumber string `json:"formattedNumber,omitempty"`
	Message         string `json:"message,omitempty"`
}

// ListFilter narrows the paged appointment list.
type ListFilter struct {
	Status     Status
	StartDate  string
	EndDate    string
	PageNumber int
	PageSize   int
}

type CreateInput struct {
	ClientID      string   `json:"clientId"`
	ClientName    string   `json:"clientName"`
	ClientPhone   string   `json:"clientPhone"`
	ClientEmail   string   `json:"clientEmail"`
	ClientAddress string   `json:"clientAddress"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Date          string   `json:"appointmentDate"`
	StartTime     *string  `json:"startTime"`
	EndTime       *string  `json:"endTime"`
	Location      string   `json:"location"`
	Type          Type     `json:"type"`
	Priority      Priority `json:"priority"`
	Notes         string   `json:"notes"`
	ReminderSet   bool     `json:"reminderSet"`
}

// UpdateInput carries a partial update; nil fields keep their stored value.
type UpdateInput struct {
	ClientName    *string   `json:"clientName"`
	ClientPhone   *string   `json:"clientPhone"`
	ClientEmail   *string   `json:"clientEmail"`
	ClientAddress *string   `json:"clientAddress"`
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Date          *string   `json:"appointmentDate"`
	StartTime     *string   `json:"startTime"`
	EndTime       *string   `json:"endTime"`
	Location      *string   `json:"location"`
	Type          *Type     `json:"type"`
	Status        *Status   `json:"status"`
	Priority      *Priority `json:"priority"`
	Notes         *string   `json:"notes"`
	ReminderSet   *bool     `json:"reminderSet"`
}

// ConflictQuery is the body of an explicit conflict check.
type ConflictQuery struct {
	Date                 string  `json:"appointmentDate"`
	StartTime            string  `json:"startTime"`
	EndTime              string  `json:"endTime"`
	ExcludeAppointmentID *string `json:"excludeAppointmentId"`
}

// Draft is a validated CreateInput.
type Draft struct {
	ClientID      *uuid.UUID
	ClientName    *string
	ClientPhone   *string
	ClientEmail   *string
	ClientAddress *string
	Title         string
	Description   *string
	Date          string
	StartTime     *string
	EndTime       *string
	Location      *string
	Type          Type
	Priority      Priority
	Notes         *string
	ReminderSet   bool
}

// Patch is a validated UpdateInput. Nil means "leave unchanged".
type Patch struct {
	ClientName    *string
	ClientPhone   *string
	ClientEmail   *string
	ClientAddress *string
	Title         *string
	Description   *string
	Date          *string
	StartTime     *string
	EndTime       *string
	Location      *string
	Type          *Type
	Status        *Status
	Priority      *Priority
	Notes         *string
	ReminderSet   *bool
}
