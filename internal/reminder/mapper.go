package reminder

import (
	"github.com/hackgods/agent-crm-scheduling/internal/rowmap"
)

var reminderAliases = rowmap.Aliases{
	"ReminderId":             rowmap.Variants("ReminderId", "ReminderID", "id"),
	"AgentId":                rowmap.Variants("AgentId", "AgentID"),
	"ClientId":               rowmap.Variants("ClientId", "ClientID"),
	"AppointmentId":          rowmap.Variants("AppointmentId", "AppointmentID"),
	"ReminderType":           rowmap.Variants("ReminderType", "type"),
	"Title":                  rowmap.Variants("Title"),
	"Description":            rowmap.Variants("Description"),
	"ReminderDate":           rowmap.Variants("ReminderDate", "date"),
	"ReminderTime":           rowmap.Variants("ReminderTime", "time"),
	"ClientName":             rowmap.Variants("ClientName"),
	"Priority":               rowmap.Variants("Priority"),
	"Status":                 rowmap.Variants("Status"),
	"EnableSMS":              rowmap.Variants("EnableSms", "EnableSMS"),
	"EnableWhatsApp":         rowmap.Variants("EnableWhatsApp", "enable_whatsapp"),
	"EnablePushNotification": rowmap.Variants("EnablePushNotification", "enable_push"),
	"AdvanceNotice":          rowmap.Variants("AdvanceNotice"),
	"CustomMessage":          rowmap.Variants("CustomMessage"),
	"AutoSend":               rowmap.Variants("AutoSend"),
	"Notes":                  rowmap.Variants("Notes"),
	"CreatedDate":            rowmap.Variants("CreatedDate", "created_at", "createdAt"),
	"ModifiedDate":           rowmap.Variants("ModifiedDate", "modified_at", "updated_at", "updatedAt"),
	"CompletedDate":          rowmap.Variants("CompletedDate", "completed_at"),
	"ClientPhone":            rowmap.Variants("ClientPhone", "PhoneNumber", "phone_number"),
	"ClientEmail":            rowmap.Variants("ClientEmail", "Email"),
	"FullName":               rowmap.Variants("FullName", "ClientFullName"),
	"TotalRecords":           rowmap.Variants("TotalRecords", "total_count", "TotalCount"),
}

var settingsAliases = rowmap.Aliases{
	"SettingId":    rowmap.Variants("ReminderSettingId", "SettingId", "id"),
	"AgentId":      rowmap.Variants("AgentId", "AgentID"),
	"ReminderType": rowmap.Variants("ReminderType", "type"),
	"IsEnabled":    rowmap.Variants("IsEnabled", "Enabled"),
	"DaysBefore":   rowmap.Variants("DaysBefore", "days_before_offset"),
	"TimeOfDay":    rowmap.Variants("TimeOfDay", "ReminderTime", "time"),
	"RepeatDaily":  rowmap.Variants("RepeatDaily"),
	"CreatedDate":  rowmap.Variants("CreatedDate", "created_at"),
	"ModifiedDate": rowmap.Variants("ModifiedDate", "modified_at", "updated_at"),
}

var statisticsAliases = rowmap.Aliases{
	"TotalActive":       rowmap.Variants("TotalActive", "active_count", "active"),
	"TotalCompleted":    rowmap.Variants("TotalCompleted", "completed_count", "completed"),
	"TodayReminders":    rowmap.Variants("TodayReminders", "today_count", "today"),
	"UpcomingReminders": rowmap.Variants("UpcomingReminders", "upcoming_count", "upcoming"),
	"HighPriority":      rowmap.Variants("HighPriority", "high_priority_count"),
	"Overdue":           rowmap.Variants("Overdue", "overdue_count"),
}

var birthdayAliases = rowmap.Aliases{
	"ClientId":    rowmap.Variants("ClientId", "ClientID", "id"),
	"FirstName":   rowmap.Variants("FirstName"),
	"Surname":     rowmap.Variants("Surname", "LastName"),
	"FullName":    rowmap.Variants("FullName", "ClientName"),
	"PhoneNumber": rowmap.Variants("PhoneNumber", "Phone"),
	"Email":       rowmap.Variants("Email"),
	"DateOfBirth": rowmap.Variants("DateOfBirth", "dob", "BirthDate"),
}

var policyExpiryAliases = rowmap.Aliases{
	"PolicyId":        rowmap.Variants("PolicyId", "PolicyID", "ClientPolicyId"),
	"ClientId":        rowmap.Variants("ClientId", "ClientID"),
	"FullName":        rowmap.Variants("FullName", "ClientName"),
	"PhoneNumber":     rowmap.Variants("PhoneNumber", "Phone"),
	"Email":           rowmap.Variants("Email"),
	"PolicyName":      rowmap.Variants("PolicyName"),
	"PolicyType":      rowmap.Variants("PolicyType", "TypeName"),
	"CompanyName":     rowmap.Variants("CompanyName", "InsuranceCompany"),
	"EndDate":         rowmap.Variants("EndDate", "ExpiryDate"),
	"DaysUntilExpiry": rowmap.Variants("DaysUntilExpiry", "days_to_expiry"),
	"Premium":         rowmap.Variants("Premium", "PremiumAmount"),
}

// MapReminder converts one storage row into the wire reminder.
func MapReminder(row rowmap.Row) Reminder {
	r := rowmap.NewReader(row, reminderAliases)
	return Reminder{
		ReminderID:             r.String("ReminderId"),
		AgentID:                r.String("AgentId"),
		ClientID:               r.String("ClientId"),
		AppointmentID:          r.String("AppointmentId"),
		ReminderType:           Type(r.String("ReminderType")),
		Title:                  r.String("Title"),
		Description:            r.String("Description"),
		ReminderDate:           r.Date("ReminderDate"),
		ReminderTime:           r.Time("ReminderTime"),
		ClientName:             r.String("ClientName"),
		Priority:               Priority(r.String("Priority")),
		Status:                 Status(r.String("Status")),
		EnableSMS:              r.Bool("EnableSMS", false),
		EnableWhatsApp:         r.Bool("EnableWhatsApp", false),
		EnablePushNotification: r.Bool("EnablePushNotification", false),
		AdvanceNotice:          r.String("AdvanceNotice"),
		CustomMessage:          r.String("CustomMessage"),
		AutoSend:               r.Bool("AutoSend", false),
		Notes:                  r.String("Notes"),
		CreatedDate:            r.DateTime("CreatedDate"),
		ModifiedDate:           r.DateTime("ModifiedDate"),
		CompletedDate:          r.DateTimePtr("CompletedDate"),
		ClientPhone:            r.String("ClientPhone"),
		ClientEmail:            r.String("ClientEmail"),
		FullName:               r.String("FullName"),
		totalRecords:           r.Int("TotalRecords"),
	}
}

func MapReminders(rows []rowmap.Row) []Reminder {
	out := make([]Reminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapReminder(row))
	}
	return out
}

func MapSettings(row rowmap.Row) Settings {
	r := rowmap.NewReader(row, settingsAliases)
	return Settings{
		SettingID:    r.String("SettingId"),
		AgentID:      r.String("AgentId"),
		ReminderType: Type(r.String("ReminderType")),
		IsEnabled:    r.Bool("IsEnabled", true),
		DaysBefore:   r.Int("DaysBefore"),
		TimeOfDay:    r.Time("TimeOfDay"),
		RepeatDaily:  r.Bool("RepeatDaily", false),
		CreatedDate:  r.DateTime("CreatedDate"),
		ModifiedDate: r.DateTime("ModifiedDate"),
	}
}

func MapStatistics(row rowmap.Row) Statistics {
	r := rowmap.NewReader(row, statisticsAliases)
	return Statistics{
		TotalActive:       r.Int("TotalActive"),
		TotalCompleted:    r.Int("TotalCompleted"),
		TodayReminders:    r.Int("TodayReminders"),
		UpcomingReminders: r.Int("UpcomingReminders"),
		HighPriority:      r.Int("HighPriority"),
		Overdue:           r.Int("Overdue"),
	}
}

// MapBirthday maps a client row; Age is filled in by the caller, which knows
// the reference day.
func MapBirthday(row rowmap.Row) BirthdayReminder {
	r := rowmap.NewReader(row, birthdayAliases)
	b := BirthdayReminder{
		ClientID:    r.String("ClientId"),
		FirstName:   r.String("FirstName"),
		Surname:     r.String("Surname"),
		FullName:    r.String("FullName"),
		PhoneNumber: r.String("PhoneNumber"),
		Email:       r.String("Email"),
		DateOfBirth: r.Date("DateOfBirth"),
	}
	if b.FullName == "" && (b.FirstName != "" || b.Surname != "") {
		b.FullName = joinName(b.FirstName, b.Surname)
	}
	return b
}

// MapPolicyExpiry maps a policy row. DaysUntilExpiry is -1 when storage did
// not compute it; the service fills it from EndDate.
func MapPolicyExpiry(row rowmap.Row) PolicyExpiryReminder {
	r := rowmap.NewReader(row, policyExpiryAliases)
	days := int64(-1)
	if r.Has("DaysUntilExpiry") {
		days = r.Int("DaysUntilExpiry")
	}
	return PolicyExpiryReminder{
		PolicyID:        r.String("PolicyId"),
		ClientID:        r.String("ClientId"),
		FullName:        r.String("FullName"),
		PhoneNumber:     r.String("PhoneNumber"),
		Email:           r.String("Email"),
		PolicyName:      r.String("PolicyName"),
		PolicyType:      r.String("PolicyType"),
		CompanyName:     r.String("CompanyName"),
		EndDate:         r.Date("EndDate"),
		DaysUntilExpiry: days,
		Premium:         r.Decimal("Premium"),
	}
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
