package reminder

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCall           Type = "Call"
	TypeVisit          Type = "Visit"
	TypePolicyExpiry   Type = "PolicyExpiry"
	TypeMaturingPolicy Type = "MaturingPolicy"
	TypeBirthday       Type = "Birthday"
	TypeHoliday        Type = "Holiday"
	TypeCustom         Type = "Custom"
	TypeAppointment    Type = "Appointment"
)

var validTypes = map[Type]struct{}{
	TypeCall: {}, TypeVisit: {}, TypePolicyExpiry: {}, TypeMaturingPolicy: {},
	TypeBirthday: {}, TypeHoliday: {}, TypeCustom: {}, TypeAppointment: {},
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

type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a reminder may move from one status to
// another. Completed and Cancelled are terminal.
func CanTransition(from, to Status) bool {
	return from == StatusActive && (to == StatusCompleted || to == StatusCancelled)
}

type Reminder struct {
	ReminderID             string   `json:"ReminderId"`
	AgentID                string   `json:"AgentId"`
	ClientID               string   `json:"ClientId,omitempty"`
	AppointmentID          string   `json:"AppointmentId,omitempty"`
	ReminderType           Type     `json:"ReminderType"`
	Title                  string   `json:"Title"`
	Description            string   `json:"Description,omitempty"`
	ReminderDate           string   `json:"ReminderDate"`
	ReminderTime           *string  `json:"ReminderTime"`
	ClientName             string   `json:"ClientName,omitempty"`
	Priority               Priority `json:"Priority"`
	Status                 Status   `json:"Status"`
	EnableSMS              bool     `json:"EnableSMS"`
	EnableWhatsApp         bool     `json:"EnableWhatsApp"`
	EnablePushNotification bool     `json:"EnablePushNotification"`
	AdvanceNotice          string   `json:"AdvanceNotice"`
	CustomMessage          string   `json:"CustomMessage,omitempty"`
	AutoSend               bool     `json:"AutoSend"`
	Notes                  string   `json:"Notes,omitempty"`
	CreatedDate            string   `json:"CreatedDate"`
	ModifiedDate           string   `json:"ModifiedDate,omitempty"`
	CompletedDate          *string  `json:"CompletedDate,omitempty"`
	ClientPhone            string   `json:"ClientPhone,omitempty"`
	ClientEmail            string   `json:"ClientEmail,omitempty"`
	FullName               string   `json:"FullName,omitempty"`

	// carried by filtered-path rows only
	totalRecords int64
}

type Settings struct {
	SettingID    string  `json:"ReminderSettingId,omitempty"`
	AgentID      string  `json:"AgentId"`
	ReminderType Type    `json:"ReminderType"`
	IsEnabled    bool    `json:"IsEnabled"`
	DaysBefore   int64   `json:"DaysBefore"`
	TimeOfDay    *string `json:"TimeOfDay"`
	RepeatDaily  bool    `json:"RepeatDaily"`
	CreatedDate  string  `json:"CreatedDate,omitempty"`
	ModifiedDate string  `json:"ModifiedDate,omitempty"`
}

type Statistics struct {
	TotalActive       int64 `json:"TotalActive"`
	TotalCompleted    int64 `json:"TotalCompleted"`
	TodayReminders    int64 `json:"TodayReminders"`
	UpcomingReminders int64 `json:"UpcomingReminders"`
	HighPriority      int64 `json:"HighPriority"`
	Overdue           int64 `json:"Overdue"`
}

type BirthdayReminder struct {
	ClientID    string `json:"ClientId"`
	FirstName   string `json:"FirstName,omitempty"`
	Surname     string `json:"Surname,omitempty"`
	FullName    string `json:"FullName"`
	PhoneNumber string `json:"PhoneNumber,omitempty"`
	Email       string `json:"Email,omitempty"`
	DateOfBirth string `json:"DateOfBirth"`
	Age         int    `json:"Age"`
}

type PolicyExpiryReminder struct {
	PolicyID        string          `json:"PolicyId"`
	ClientID        string          `json:"ClientId"`
	FullName        string          `json:"FullName"`
	PhoneNumber     string          `json:"PhoneNumber,omitempty"`
	Email           string          `json:"Email,omitempty"`
	PolicyName      string          `json:"PolicyName,omitempty"`
	PolicyType      string          `json:"PolicyType,omitempty"`
	CompanyName     string          `json:"CompanyName,omitempty"`
	EndDate         string          `json:"EndDate"`
	DaysUntilExpiry int64           `json:"DaysUntilExpiry"`
	Premium         decimal.Decimal `json:"Premium"`
}

// Filter holds the optional narrowing applied to the paged reminder list.
type Filter struct {
	Type       Type
	Status     Status
	Priority   Priority
	ClientID   *uuid.UUID
	StartDate  string
	EndDate    string
	PageNumber int
	PageSize   int
}

// UsesFilteredPath reports whether any source-narrowing filter is set. Date
// range and pagination alone do not count.
func (f Filter) UsesFilteredPath() bool {
	return f.Type != "" || f.Status != "" || f.Priority != "" || f.ClientID != nil
}

type Page struct {
	Reminders    []Reminder `json:"reminders"`
	TotalRecords int64      `json:"totalRecords"`
	CurrentPage  int        `json:"currentPage"`
	TotalPages   int        `json:"totalPages"`
	PageSize     int        `json:"pageSize"`
}

// SourceCounts are the four independently computed totals behind an
// unfiltered reminder page.
type SourceCounts struct {
	Reminders      int64
	PolicyExpiries int64
	Birthdays      int64
	Appointments   int64
}

func (c SourceCounts) Total() int64 {
	return c.Reminders + c.PolicyExpiries + c.Birthdays + c.Appointments
}

// CreateInput is the request body for a new reminder.
type CreateInput struct {
	ClientID               string   `json:"ClientId"`
	AppointmentID          string   `json:"AppointmentId"`
	ReminderType           Type     `json:"ReminderType"`
	Title                  string   `json:"Title"`
	Description            string   `json:"Description"`
	ReminderDate           string   `json:"ReminderDate"`
	ReminderTime           *string  `json:"ReminderTime"`
	ClientName             string   `json:"ClientName"`
	Priority               Priority `json:"Priority"`
	EnableSMS              bool     `json:"EnableSMS"`
	EnableWhatsApp         bool     `json:"EnableWhatsApp"`
	EnablePushNotification bool     `json:"EnablePushNotification"`
	AdvanceNotice          string   `json:"AdvanceNotice"`
	CustomMessage          string   `json:"CustomMessage"`
	AutoSend               bool     `json:"AutoSend"`
	Notes                  string   `json:"Notes"`
}

// UpdateInput carries a partial update; nil fields keep their stored value.
type UpdateInput struct {
	ReminderType           *Type     `json:"ReminderType"`
	Title                  *string   `json:"Title"`
	Description            *string   `json:"Description"`
	ReminderDate           *string   `json:"ReminderDate"`
	ReminderTime           *string   `json:"ReminderTime"`
	ClientName             *string   `json:"ClientName"`
	Priority               *Priority `json:"Priority"`
	EnableSMS              *bool     `json:"EnableSMS"`
	EnableWhatsApp         *bool     `json:"EnableWhatsApp"`
	EnablePushNotification *bool     `json:"EnablePushNotification"`
	AdvanceNotice          *string   `json:"AdvanceNotice"`
	CustomMessage          *string   `json:"CustomMessage"`
	AutoSend               *bool     `json:"AutoSend"`
	Notes                  *string   `json:"Notes"`
}

type SettingsInput struct {
	ReminderType Type    `json:"ReminderType"`
	IsEnabled    *bool   `json:"IsEnabled"`
	DaysBefore   *int    `json:"DaysBefore"`
	TimeOfDay    *string `json:"TimeOfDay"`
	RepeatDaily  *bool   `json:"RepeatDaily"`
}

// Draft is a validated, normalized reminder ready for storage.
type Draft struct {
	ClientID               *uuid.UUID
	AppointmentID          *uuid.UUID
	Type                   Type
	Title                  string
	Description            *string
	Date                   string
	Time                   *string
	ClientName             *string
	Priority               Priority
	EnableSMS              bool
	EnableWhatsApp         bool
	EnablePushNotification bool
	AdvanceNotice          string
	CustomMessage          *string
	AutoSend               bool
	Notes                  *string
}

// Patch is a validated UpdateInput. Nil means "leave unchanged".
type Patch struct {
	Type                   *Type
	Title                  *string
	Description            *string
	Date                   *string
	Time                   *string
	ClientName             *string
	Priority               *Priority
	EnableSMS              *bool
	EnableWhatsApp         *bool
	EnablePushNotification *bool
	AdvanceNotice          *string
	CustomMessage          *string
	AutoSend               *bool
	Notes                  *string
}

type SettingsDraft struct {
	Type        Type
	IsEnabled   bool
	DaysBefore  int
	TimeOfDay   *string
	RepeatDaily bool
}

// MonthDay is a calendar day independent of year, used for birthday matching.
type MonthDay struct {
	Month int
	Day   int
}
