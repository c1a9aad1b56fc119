package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

type createRoleRequest struct {
	Name        string           `json:"name"`
	Salary      *decimal.Decimal `json:"salary"`
	Description string           `json:"description"`
}

type updateRoleRequest struct {
	Name        *string          `json:"name"`
	Salary      *decimal.Decimal `json:"salary"`
	Description *string          `json:"description"`
}

func (h *Handler) routeRoles(w http.ResponseWriter, r *http.Request, roleID uint, hasID bool) {
	switch {
	case !hasID && r.Method == http.MethodGet:
		h.handleFindRoles(w, r)
	case !hasID && r.Method == http.MethodPost:
		h.handleCreateRole(w, r)
	case hasID && r.Method == http.MethodPut:
		h.handleUpdateRole(w, r, roleID)
	case hasID && r.Method == http.MethodDelete:
		h.handleDeleteRole(w, r, roleID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleFindRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.services.Roles.FindRoles(r.Context(), service.RoleFilter{
		Name: r.URL.Query().Get("name"),
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roles)
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := service.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Salary != nil {
		input.Salary = decimal.NewNullDecimal(*req.Salary)
	}

	roleID, err := h.services.Roles.CreateRole(r.Context(), input)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	writeCreated(w, roleID, "role created")
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request, roleID uint) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.services.Roles.UpdateRole(r.Context(), roleID, service.UpdateRoleInput{
		Name:        req.Name,
		Salary:      req.Salary,
		Description: req.Description,
	}); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "role updated")
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request, roleID uint) {
	if err := h.services.Roles.DeleteRole(r.Context(), roleID); err != nil {
		h.respondWithError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "role deleted")
}
