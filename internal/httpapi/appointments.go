package httpapi

import (
	"net/http"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

type createAppointmentRequest struct {
	PatientID   uint    `json:"patient_id"`
	Description string  `json:"description"`
	Date        *string `json:"date"`
	Time        string  `json:"time"`
	Status      string  `json:"status"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) routeAppointments(w http.ResponseWriter, r *http.Request, appointmentID uint, hasID bool) {
	switch {
	case !hasID && r.Method == http.MethodGet:
		h.handleFindAppointments(w, r)
	case !hasID && r.Method == http.MethodPost:
		h.handleCreateAppointment(w, r)
	case hasID && r.Method == http.MethodPatch:
		h.handleUpdateAppointmentStatus(w, r, appointmentID)
	case hasID && r.Method == http.MethodDelete:
		h.handleDeleteAppointment(w, r, appointmentID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleFindAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	appointments, err := h.services.Appointments.FindAppointments(r.Context(), service.AppointmentFilter{
		PatientName: query.Get("patient"),
		NationalID:  query.Get("national_id"),
		Status:      query.Get("status"),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, appointments)
}

func (h *Handler) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDate(req.Date, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appointmentID, err := h.services.Appointments.CreateAppointment(r.Context(), service.CreateAppointmentInput{
		PatientID:   req.PatientID,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		Status:      req.Status,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeCreated(w, appointmentID, "appointment scheduled")
}

func (h *Handler) handleUpdateAppointmentStatus(w http.ResponseWriter, r *http.Request, appointmentID uint) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Appointments.UpdateAppointmentStatus(r.Context(), appointmentID, req.Status); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "appointment status updated")
}

func (h *Handler) handleDeleteAppointment(w http.ResponseWriter, r *http.Request, appointmentID uint) {
	if err := h.services.Appointments.DeleteAppointment(r.Context(), appointmentID); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "appointment deleted")
}
