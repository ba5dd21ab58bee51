package api

import (
	"net/http"
	"strings"

	"github.com/hackgods/agent-crm-scheduling/internal/appointment"
)

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNumber, ok := intQuery(w, r, "PageNumber")
		if !ok {
			return
		}
		pageSize, ok := intQuery(w, r, "PageSize")
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), agentID(r), appointment.ListFilter{
			Status:     appointment.Status(queryParam(r, "Status")),
			StartDate:  queryParam(r, "StartDate"),
			EndDate:    queryParam(r, "EndDate"),
			PageNumber: pageNumber,
			PageSize:   pageSize,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.CreateInput
		if !decodeJSON(w, r, &req) {
			return
		}

		res, appt, err := svc.Create(r.Context(), agentID(r), req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		resp := mutationResponse(res, nil)
		if appt != nil {
			resp.Data = appt
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "appointment")
		if !ok {
			return
		}
		appt, err := svc.Get(r.Context(), agentID(r), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func updateAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "appointment")
		if !ok {
			return
		}
		var req appointment.UpdateInput
		if !decodeJSON(w, r, &req) {
			return
		}

		appt, err := svc.Update(r.Context(), agentID(r), id, req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "appointment")
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

func updateAppointmentStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "appointment")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.UpdateStatus(r.Context(), agentID(r), id, appointment.Status(strings.TrimSpace(req.Status)))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse(res, nil))
	}
}

func searchAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Search(r.Context(), agentID(r), r.URL.Query().Get("q"))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func todaysAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Today(r.Context(), agentID(r))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// checkConflictsHandler always answers 200; overlaps are reported in the
// body rather than as an error.
func checkConflictsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.ConflictQuery
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := svc.CheckConflicts(r.Context(), agentID(r), req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func weekViewHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.WeekView(r.Context(), agentID(r), queryParam(r, "WeekStart"))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, days)
	}
}

func calendarViewHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.CalendarView(r.Context(), agentID(r), queryParam(r, "Month"), queryParam(r, "Year"))
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, days)
	}
}

func validatePhoneHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidatePhoneRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := svc.ValidatePhone(r.Context(), agentID(r), req.PhoneNumber)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
