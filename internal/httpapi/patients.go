package httpapi

import (
	"net/http"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

type createPatientRequest struct {
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	BirthDate  *string `json:"birth_date"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
}

type updatePatientRequest struct {
	Name       *string `json:"name"`
	NationalID *string `json:"national_id"`
	BirthDate  *string `json:"birth_date"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
}

func (h *Handler) routePatients(w http.ResponseWriter, r *http.Request, patientID uint, hasID bool) {
	switch {
	case !hasID && r.Method == http.MethodGet:
		h.handleFindPatients(w, r)
	case !hasID && r.Method == http.MethodPost:
		h.handleCreatePatient(w, r)
	case hasID && r.Method == http.MethodGet:
		h.handleGetPatient(w, r, patientID)
	case hasID && r.Method == http.MethodPut:
		h.handleUpdatePatient(w, r, patientID)
	case hasID && r.Method == http.MethodDelete:
		h.handleDeletePatient(w, r, patientID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleFindPatients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	patients, err := h.services.Patients.FindPatients(r.Context(), service.PatientFilter{
		Name:       query.Get("name"),
		NationalID: query.Get("national_id"),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patients)
}

func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request, patientID uint) {
	patient, err := h.services.Patients.GetPatient(r.Context(), patientID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patient)
}

func (h *Handler) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthDate, err := parseDate(req.BirthDate, "birth_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patientID, err := h.services.Patients.CreatePatient(r.Context(), service.CreatePatientInput{
		Name:       req.Name,
		NationalID: req.NationalID,
		BirthDate:  birthDate,
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeCreated(w, patientID, "patient created")
}

func (h *Handler) handleUpdatePatient(w http.ResponseWriter, r *http.Request, patientID uint) {
	var req updatePatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthDate, err := parseDate(req.BirthDate, "birth_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Patients.UpdatePatient(r.Context(), patientID, service.UpdatePatientInput{
		Name:       req.Name,
		NationalID: req.NationalID,
		BirthDate:  birthDate,
		Phone:      req.Phone,
		Email:      req.Email,
	}); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "patient updated")
}

func (h *Handler) handleDeletePatient(w http.ResponseWriter, r *http.Request, patientID uint) {
	if err := h.services.Patients.DeletePatient(r.Context(), patientID); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "patient deleted")
}
