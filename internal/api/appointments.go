package api

import (
	"net/http"

	"github.com/hackgods/clinic-management/internal/clinic"
)

// listAppointmentsHandler serves GET /appointments. At most one filter
// applies, checked in this order: patient_id, doctor_id, date (or "today"),
// status, upcoming=true.
func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ctx := r.Context()

		var (
			as  []clinic.Appointment
			err error
		)
		switch {
		case q.Has("patient_id"):
			id, ok := int64Query(w, r, "patient_id")
			if !ok {
				return
			}
			as, err = svc.AppointmentsForPatient(ctx, id)
		case q.Has("doctor_id"):
			id, ok := int64Query(w, r, "doctor_id")
			if !ok {
				return
			}
			as, err = svc.AppointmentsForDoctor(ctx, id)
		case q.Get("date") == "today":
			as, err = svc.AppointmentsToday(ctx)
		case q.Has("date"):
			d, perr := parseDate("date", q.Get("date"))
			if perr != nil {
				writeServiceError(w, perr)
				return
			}
			as, err = svc.AppointmentsOn(ctx, d)
		case q.Has("status"):
			as, err = svc.AppointmentsByStatus(ctx, clinic.AppointmentStatus(q.Get("status")))
		case q.Get("upcoming") == "true":
			as, err = svc.UpcomingAppointments(ctx)
		default:
			as, err = svc.ListAppointments(ctx)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(as, newAppointmentResponse))
	}
}

func createAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		a, err := req.toAppointment(0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := svc.BookAppointment(r.Context(), a); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newAppointmentResponse(a))
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}

		a, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAppointmentResponse(a))
	}
}

func updateAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req AppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		a, err := req.toAppointment(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := svc.UpdateAppointment(r.Context(), a); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAppointmentResponse(a))
	}
}

func setAppointmentStatusHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req StatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		status := clinic.AppointmentStatus(req.Status)
		a, err := svc.SetAppointmentStatus(r.Context(), id, status)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newAppointmentResponse(a))
	}
}

func deleteAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
