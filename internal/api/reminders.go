package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/agent-crm-scheduling/internal/reminder"
)

func listRemindersHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNumber, ok := intQuery(w, r, "PageNumber")
		if !ok {
			return
		}
		pageSize, ok := intQuery(w, r, "PageSize")
		if !ok {
			return
		}

		f := reminder.Filter{
			Type:       reminder.Type(queryParam(r, "ReminderType")),
			Status:     reminder.Status(queryParam(r, "Status")),
			Priority:   reminder.Priority(queryParam(r, "Priority")),
			StartDate:  queryParam(r, "StartDate"),
			EndDate:    queryParam(r, "EndDate"),
			PageNumber: pageNumber,
			PageSize:   pageSize,
		}
		if raw := queryParam(r, "ClientId"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_client_id", "clientId must be a valid UUID")
				return
			}
			f.ClientID = &id
		}

		page, err := svc.List(r.Context(), agentID(r), f)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func createReminderHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reminder.CreateInput
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Create(r.Context(), agentID(r), req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, mutationResponse(res, nil))
	}
}

func getReminderHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "reminder")
		if !ok {
			return
		}
		rem, err := svc.Get(r.Context(), agentID(r), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rem)
	}
}

func updateReminderHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "reminder")
		if !ok {
			return
		}
		var req reminder.UpdateInput
		if !decodeJSON(w, r, &req) {
			return
		}

		rem, err := svc.Update(r.Context(), agentID(r), id, req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rem)
	}
}

func deleteReminderHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "reminder")
		if !ok {
			return
		}
		res, err := svc.Delete(r.Context(), agentID(r), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse(res, nil))
	}
}

func completeReminderHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "reminder")
		if !ok {
			return
		}
		var req CompleteReminderRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Complete(r.Context(), agentID(r), id, req.Notes)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse(res, nil))
	}
}

func updateReminderStatusHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "reminder")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.SetStatus(r.Context(), agentID(r), id, reminder.Status(strings.TrimSpace(req.Status)))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse(res, nil))
	}
}

func todaysRemindersHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.TodaysReminders(r.Context(), agentID(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func remindersByTypeHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ByType(r.Context(), agentID(r), reminder.Type(chi.URLParam(r, "type")))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func remindersByStatusHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ByStatus(r.Context(), agentID(r), reminder.Status(chi.URLParam(r, "status")))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func birthdayRemindersHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Birthdays(r.Context(), agentID(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func policyExpiryRemindersHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := reminder.ParseDaysAhead(queryParam(r, "DaysAhead"))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		list, err := svc.PolicyExpiries(r.Context(), agentID(r), days)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func reminderSettingsHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.Settings(r.Context(), agentID(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func updateReminderSettingsHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reminder.SettingsInput
		if !decodeJSON(w, r, &req) {
			return
		}
		settings, err := svc.UpdateSettings(r.Context(), agentID(r), req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

// reminderStatisticsHandler answers with a one-element array, matching the
// other reminder list endpoints.
func reminderStatisticsHandler(svc *reminder.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Statistics(r.Context(), agentID(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []reminder.Statistics{stats})
	}
}
