package appointment

import (
	"time"

	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
	"github.com/hackgods/agent-crm-scheduling/internal/temporal"
)

var appointmentAliases = rowmap.Aliases{
	"AppointmentId": rowmap.Variants("AppointmentId", "AppointmentID", "id"),
	"AgentId":       rowmap.Variants("AgentId", "AgentID"),
	"ClientId":      rowmap.Variants("ClientId", "ClientID"),
	"ClientName":    rowmap.Variants("ClientName", "FullName"),
	"ClientPhone":   rowmap.Variants("ClientPhone", "PhoneNumber"),
	"ClientEmail":   rowmap.Variants("ClientEmail", "Email"),
	"ClientAddress": rowmap.Variants("ClientAddress", "Address"),
	"Title":         rowmap.Variants("Title"),
	"Description":   rowmap.Variants("Description"),
	"Date":          rowmap.Variants("AppointmentDate", "date"),
	"StartTime":     rowmap.Variants("StartTime"),
	"EndTime":       rowmap.Variants("EndTime"),
	"Location":      rowmap.Variants("Location"),
	"Type":          rowmap.Variants("Type", "AppointmentType", "appointment_type"),
	"Status":        rowmap.Variants("Status"),
	"Priority":      rowmap.Variants("Priority"),
	"Notes":         rowmap.Variants("Notes"),
	"ReminderSet":   rowmap.Variants("ReminderSet"),
	"IsActive":      rowmap.Variants("IsActive", "active"),
	"CreatedDate":   rowmap.Variants("CreatedDate", "created_at", "createdAt"),
	"ModifiedDate":  rowmap.Variants("ModifiedDate", "modified_at", "updated_at", "updatedAt"),
	"FormattedTime": rowmap.Variants("FormattedTime"),
}

var phoneAliases = rowmap.Aliases{
	"IsValid":         rowmap.Variants("IsValid", "valid"),
	"FormattedNumber": rowmap.Variants("FormattedNumber", "formatted_phone", "FormattedPhone"),
	"Message":         rowmap.Variants("Message", "ValidationMessage"),
}

// MapAppointment converts one storage row into the wire appointment.
// reminderSet defaults to false and isActive to true.
func MapAppointment(row rowmap.Row) Appointment {
	r := rowmap.NewReader(row, appointmentAliases)
	a := Appointment{
		AppointmentID: r.String("AppointmentId"),
		AgentID:       r.String("AgentId"),
		ClientID:      r.String("ClientId"),
		ClientName:    r.String("ClientName"),
		ClientPhone:   r.String("ClientPhone"),
		ClientEmail:   r.String("ClientEmail"),
		ClientAddress: r.String("ClientAddress"),
		Title:         r.String("Title"),
		Description:   r.String("Description"),
		Date:          r.Date("Date"),
		StartTime:     r.Time("StartTime"),
		EndTime:       r.Time("EndTime"),
		Location:      r.String("Location"),
		Type:          Type(r.String("Type")),
		Status:        Status(r.String("Status")),
		Priority:      Priority(r.String("Priority")),
		Notes:         r.String("Notes"),
		ReminderSet:   r.Bool("ReminderSet", false),
		IsActive:      r.Bool("IsActive", true),
		CreatedDate:   r.DateTime("CreatedDate"),
		ModifiedDate:  r.DateTime("ModifiedDate"),
		FormattedTime: r.String("FormattedTime"),
	}
	if a.FormattedTime == "" {
		a.FormattedTime = formatTimeRange(a.StartTime, a.EndTime)
	}
	return a
}

func MapAppointments(rows []rowmap.Row) []Appointment {
	out := make([]Appointment, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapAppointment(row))
	}
	return out
}

func MapPhoneValidation(row rowmap.Row) PhoneValidation {
	r := rowmap.NewReader(row, phoneAliases)
	return PhoneValidation{
		IsValid:         r.Bool("IsValid", false),
		FormattedNumber: r.String("FormattedNumber"),
		Message:         r.String("Message"),
	}
}

// formatTimeRange renders "9:00 AM - 10:30 AM" from canonical times.
func formatTimeRange(start, end *string) string {
	if start == nil {
		return ""
	}
	s, err := time.Parse(temporal.TimeLayout, *start)
	if err != nil {
		return ""
	}
	out := s.Format("3:04 PM")
	if end != nil {
		if e, err := time.Parse(temporal.TimeLayout, *end); err == nil {
			out += " - " + e.Format("3:04 PM")
		}
	}
	return out
}
