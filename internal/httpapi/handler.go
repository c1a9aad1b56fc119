package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

// AuditLog is the read/purge side of the audit trail.
type AuditLog interface {
	List(ctx context.Context) ([]models.AuditRecord, error)
	Purge(ctx context.Context, ids []string) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type Services struct {
	Roles        service.RoleManager
	Employees    service.EmployeeManager
	Patients     service.PatientManager
	Appointments service.AppointmentManager
	Counts       service.Counter
	Audit        AuditLog
}

type Handler struct {
	services Services
	logger   *log.Logger
}

func NewHandler(services Services, logger *log.Logger) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// Resources lists the path prefixes the handler serves.
var Resources = []string{"roles", "employees", "patients", "appointments", "audit", "counts"}

var entityNames = map[string]string{
	"roles":        "role",
	"employees":    "employee",
	"patients":     "patient",
	"appointments": "appointment",
	"audit":        "audit record",
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) == 0 || len(parts) > 2 {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}

	r = r.WithContext(audit.WithActor(r.Context(), r.Header.Get("X-Actor")))

	var (
		id    uint
		hasID = len(parts) == 2
	)
	if hasID {
		parsed, err := parseUintID(parts[1])
		if errors.Is(err, errIDOutOfRange) {
			if entity, ok := entityNames[parts[0]]; ok {
				writeError(w, http.StatusNotFound, entity+" not found")
				return
			}
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+parts[0]+" id")
			return
		}
		id = parsed
	}

	switch parts[0] {
	case "roles":
		h.routeRoles(w, r, id, hasID)
	case "employees":
		h.routeEmployees(w, r, id, hasID)
	case "patients":
		h.routePatients(w, r, id, hasID)
	case "appointments":
		h.routeAppointments(w, r, id, hasID)
	case "audit":
		h.routeAudit(w, r, id, hasID)
	case "counts":
		if hasID || r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleCounts(w, r)
	default:
		writeError(w, http.StatusNotFound, "route not found")
	}
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.services.Counts.Counts(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	switch apperror.GetCode(err) {
	case apperror.CodeValidation, apperror.CodeDuplicate, apperror.CodeHasDependents:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperror.CodeNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Printf("unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errors.New("request body too large")
		}
		return errors.New("invalid JSON body")
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"message": message,
	})
}

func writeCreated(w http.ResponseWriter, id uint, message string) {
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      id,
		"message": message,
	})
}

var errIDOutOfRange = errors.New("id out of range")

// parseUintID accepts ids that fit the SERIAL (int4) key columns. A
// well-formed id beyond that range cannot exist and reports errIDOutOfRange.
func parseUintID(raw string) (uint, error) {
	id64, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, errIDOutOfRange
		}
		return 0, errors.New("invalid id")
	}
	if id64 == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id64), nil
}

// parseDate accepts YYYY-MM-DD or DD/MM/YYYY. A nil or blank value means
// "not supplied".
func parseDate(raw *string, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}

	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{"2006-01-02", service.DateLayout} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, errors.New(field + " must be in YYYY-MM-DD or DD/MM/YYYY format")
}
