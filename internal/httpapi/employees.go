package httpapi

import (
	"net/http"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

type createEmployeeRequest struct {
	Name       string  `json:"name"`
	BirthDate  *string `json:"birth_date"`
	Address    string  `json:"address"`
	NationalID string  `json:"national_id"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	RoleID     *uint   `json:"role_id"`
}

type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	BirthDate  *string `json:"birth_date"`
	Address    *string `json:"address"`
	NationalID *string `json:"national_id"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	RoleID     *uint   `json:"role_id"`
}

func (h *Handler) routeEmployees(w http.ResponseWriter, r *http.Request, employeeID uint, hasID bool) {
	switch {
	case !hasID && r.Method == http.MethodGet:
		h.handleFindEmployees(w, r)
	case !hasID && r.Method == http.MethodPost:
		h.handleCreateEmployee(w, r)
	case hasID && r.Method == http.MethodPut:
		h.handleUpdateEmployee(w, r, employeeID)
	case hasID && r.Method == http.MethodDelete:
		h.handleDeleteEmployee(w, r, employeeID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleFindEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	employees, err := h.services.Employees.FindEmployees(r.Context(), service.EmployeeFilter{
		Name:       query.Get("name"),
		NationalID: query.Get("national_id"),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, employees)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthDate, err := parseDate(req.BirthDate, "birth_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	employeeID, err := h.services.Employees.CreateEmployee(r.Context(), service.CreateEmployeeInput{
		Name:       req.Name,
		BirthDate:  birthDate,
		Address:    req.Address,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
		RoleID:     req.RoleID,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeCreated(w, employeeID, "employee created")
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request, employeeID uint) {
	var req updateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthDate, err := parseDate(req.BirthDate, "birth_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Employees.UpdateEmployee(r.Context(), employeeID, service.UpdateEmployeeInput{
		Name:       req.Name,
		BirthDate:  birthDate,
		Address:    req.Address,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
		RoleID:     req.RoleID,
	}); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "employee updated")
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request, employeeID uint) {
	if err := h.services.Employees.DeleteEmployee(r.Context(), employeeID); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "employee deleted")
}
