package api

import (
	"net/http"

	"github.com/hackgods/clinic-management/internal/clinic"
)

// Patients

func listPatientsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dni := r.URL.Query().Get("dni"); dni != "" {
			p, err := svc.FindPatientByDNI(r.Context(), dni)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, []PatientResponse{newPatientResponse(p)})
			return
		}

		patients, err := svc.SearchPatients(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(patients, newPatientResponse))
	}
}

func createPatientHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := req.toPatient(0)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := svc.CreatePatient(r.Context(), p); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newPatientResponse(p))
	}
}

func getPatientHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}

		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newPatientResponse(p))
	}
}

func updatePatientHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req PatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := req.toPatient(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if err := svc.UpdatePatient(r.Context(), p); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newPatientResponse(p))
	}
}

func deletePatientHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := svc.DeletePatient(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func patientAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		as, err := svc.AppointmentsForPatient(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(as, newAppointmentResponse))
	}
}

// Doctors

func listDoctorsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			doctors []clinic.Doctor
			err     error
		)
		if specialty := r.URL.Query().Get("specialty"); specialty != "" {
			doctors, err = svc.DoctorsBySpecialty(r.Context(), specialty)
		} else {
			doctors, err = svc.SearchDoctors(r.Context(), r.URL.Query().Get("q"))
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doctors)
	}
}

func createDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		d := req.toDoctor(0)
		if err := svc.CreateDoctor(r.Context(), d); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

func getDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}

		d, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func updateDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req DoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		d := req.toDoctor(id)
		if err := svc.UpdateDoctor(r.Context(), d); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func deleteDoctorHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteDoctor(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func specialtiesHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialties, err := svc.Specialties(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, specialties)
	}
}

func doctorAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		as, err := svc.AppointmentsForDoctor(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(as, newAppointmentResponse))
	}
}

func statsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
