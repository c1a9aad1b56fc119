package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/audit"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/models"
	"github.com/RodrigoTechieX/MedCore-Sistema/internal/service"
)

type stubRoles struct {
	findFn   func(ctx context.Context, filter service.RoleFilter) ([]service.RoleDTO, error)
	createFn func(ctx context.Context, input service.CreateRoleInput) (uint, error)
	updateFn func(ctx context.Context, roleID uint, input service.UpdateRoleInput) error
	deleteFn func(ctx context.Context, roleID uint) error
}

func (s stubRoles) FindRoles(ctx context.Context, filter service.RoleFilter) ([]service.RoleDTO, error) {
	if s.findFn == nil {
		return nil, nil
	}
	return s.findFn(ctx, filter)
}

func (s stubRoles) CreateRole(ctx context.Context, input service.CreateRoleInput) (uint, error) {
	if s.createFn == nil {
		return 0, nil
	}
	return s.createFn(ctx, input)
}

func (s stubRoles) UpdateRole(ctx context.Context, roleID uint, input service.UpdateRoleInput) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, roleID, input)
}

func (s stubRoles) DeleteRole(ctx context.Context, roleID uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, roleID)
}

type stubEmployees struct {
	createFn func(ctx context.Context, input service.CreateEmployeeInput) (uint, error)
	updateFn func(ctx context.Context, employeeID uint, input service.UpdateEmployeeInput) error
}

func (s stubEmployees) FindEmployees(context.Context, service.EmployeeFilter) ([]service.EmployeeDTO, error) {
	return []service.EmployeeDTO{}, nil
}

func (s stubEmployees) CreateEmployee(ctx context.Context, input service.CreateEmployeeInput) (uint, error) {
	if s.createFn == nil {
		return 0, nil
	}
	return s.createFn(ctx, input)
}

func (s stubEmployees) UpdateEmployee(ctx context.Context, employeeID uint, input service.UpdateEmployeeInput) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, employeeID, input)
}

func (s stubEmployees) DeleteEmployee(context.Context, uint) error {
	return nil
}

type stubPatients struct {
	getFn    func(ctx context.Context, patientID uint) (service.PatientDTO, error)
	createFn func(ctx context.Context, input service.CreatePatientInput) (uint, error)
	deleteFn func(ctx context.Context, patientID uint) error
}

func (s stubPatients) FindPatients(context.Context, service.PatientFilter) ([]service.PatientDTO, error) {
	return []service.PatientDTO{}, nil
}

func (s stubPatients) GetPatient(ctx context.Context, patientID uint) (service.PatientDTO, error) {
	if s.getFn == nil {
		return service.PatientDTO{}, nil
	}
	return s.getFn(ctx, patientID)
}

func (s stubPatients) CreatePatient(ctx context.Context, input service.CreatePatientInput) (uint, error) {
	if s.createFn == nil {
		return 0, nil
	}
	return s.createFn(ctx, input)
}

func (s stubPatients) UpdatePatient(context.Context, uint, service.UpdatePatientInput) error {
	return nil
}

func (s stubPatients) DeletePatient(ctx context.Context, patientID uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, patientID)
}

type stubAppointments struct {
	findFn   func(ctx context.Context, filter service.AppointmentFilter) ([]service.AppointmentDTO, error)
	createFn func(ctx context.Context, input service.CreateAppointmentInput) (uint, error)
	statusFn func(ctx context.Context, appointmentID uint, status string) error
}

func (s stubAppointments) FindAppointments(ctx context.Context, filter service.AppointmentFilter) ([]service.AppointmentDTO, error) {
	if s.findFn == nil {
		return nil, nil
	}
	return s.findFn(ctx, filter)
}

func (s stubAppointments) CreateAppointment(ctx context.Context, input service.CreateAppointmentInput) (uint, error) {
	if s.createFn == nil {
		return 0, nil
	}
	return s.createFn(ctx, input)
}

func (s stubAppointments) UpdateAppointmentStatus(ctx context.Context, appointmentID uint, status string) error {
	if s.statusFn == nil {
		return nil
	}
	return s.statusFn(ctx, appointmentID, status)
}

func (s stubAppointments) DeleteAppointment(context.Context, uint) error {
	return nil
}

type stubCounts struct {
	counts service.Counts
}

func (s stubCounts) Counts(context.Context) (service.Counts, error) {
	return s.counts, nil
}

type stubAudit struct {
	listFn   func(ctx context.Context) ([]models.AuditRecord, error)
	purgeFn  func(ctx context.Context, ids []string) (int64, error)
	deleteFn func(ctx context.Context, id uint) error
}

func (s stubAudit) List(ctx context.Context) ([]models.AuditRecord, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubAudit) Purge(ctx context.Context, ids []string) (int64, error) {
	if s.purgeFn == nil {
		return 0, nil
	}
	return s.purgeFn(ctx, ids)
}

func (s stubAudit) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

func newTestHandler(services Services) *Handler {
	if services.Roles == nil {
		services.Roles = stubRoles{}
	}
	if services.Employees == nil {
		services.Employees = stubEmployees{}
	}
	if services.Patients == nil {
		services.Patients = stubPatients{}
	}
	if services.Appointments == nil {
		services.Appointments = stubAppointments{}
	}
	if services.Counts == nil {
		services.Counts = stubCounts{}
	}
	if services.Audit == nil {
		services.Audit = stubAudit{}
	}
	return NewHandler(services, log.New(io.Discard, "", 0))
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestCreateRole(t *testing.T) {
	handler := newTestHandler(Services{
		Roles: stubRoles{
			createFn: func(ctx context.Context, input service.CreateRoleInput) (uint, error) {
				if input.Name != "Nurse" {
					t.Fatalf("unexpected role name: %s", input.Name)
				}
				if !input.Salary.Valid || input.Salary.Decimal.String() != "4200.5" {
					t.Fatalf("unexpected salary: %+v", input.Salary)
				}
				if actor := audit.ActorFromContext(ctx); actor != "ana" {
					t.Fatalf("unexpected actor: %s", actor)
				}
				return 4, nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/roles", bytes.NewBufferString(`{"name":"Nurse","salary":"4200.50"}`))
	req.Header.Set("X-Actor", "ana")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, recorder.Code)
	}
	if id := decodeBody(t, recorder)["id"]; id != float64(4) {
		t.Fatalf("unexpected id: %v", id)
	}
}

func TestCreateRoleWithoutSalaryIsPassedThrough(t *testing.T) {
	handler := newTestHandler(Services{
		Roles: stubRoles{
			createFn: func(ctx context.Context, input service.CreateRoleInput) (uint, error) {
				if input.Salary.Valid {
					t.Fatalf("salary should be absent")
				}
				return 0, apperror.New(apperror.CodeValidation, "name and salary are required")
			},
		},
	})

	recorder := serve(handler, http.MethodPost, "/roles", `{"name":"Nurse"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if msg := decodeBody(t, recorder)["error"]; msg != "name and salary are required" {
		t.Fatalf("unexpected error message: %v", msg)
	}
}

func TestUpdateRoleKeepsAbsentFields(t *testing.T) {
	handler := newTestHandler(Services{
		Roles: stubRoles{
			updateFn: func(ctx context.Context, roleID uint, input service.UpdateRoleInput) error {
				if roleID != 3 {
					t.Fatalf("unexpected role id: %d", roleID)
				}
				if input.Name != nil || input.Salary != nil {
					t.Fatalf("absent fields should stay nil: %+v", input)
				}
				if input.Description == nil || *input.Description != "Day shift" {
					t.Fatalf("unexpected description: %v", input.Description)
				}
				return nil
			},
		},
	})

	recorder := serve(handler, http.MethodPut, "/roles/3", `{"description":"Day shift"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestDeleteRoleWithDependents(t *testing.T) {
	handler := newTestHandler(Services{
		Roles: stubRoles{
			deleteFn: func(ctx context.Context, roleID uint) error {
				return apperror.New(apperror.CodeHasDependents, "employees are still linked to this role")
			},
		},
	})

	recorder := serve(handler, http.MethodDelete, "/roles/3", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestCreateEmployeeParsesBothDateFormats(t *testing.T) {
	want := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"1990-03-14", "14/03/1990"} {
		handler := newTestHandler(Services{
			Employees: stubEmployees{
				createFn: func(ctx context.Context, input service.CreateEmployeeInput) (uint, error) {
					if input.BirthDate == nil || !input.BirthDate.Equal(want) {
						t.Fatalf("unexpected birth date for %s: %v", raw, input.BirthDate)
					}
					if input.RoleID == nil || *input.RoleID != 2 {
						t.Fatalf("unexpected role id: %v", input.RoleID)
					}
					return 10, nil
				},
			},
		})

		body := `{"name":"Carlos","national_id":"111.444.777-35","birth_date":"` + raw + `","role_id":2}`
		recorder := serve(handler, http.MethodPost, "/employees", body)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected status %d for %s, got %d", http.StatusCreated, raw, recorder.Code)
		}
	}
}

func TestCreateEmployeeRejectsMalformedDate(t *testing.T) {
	handler := newTestHandler(Services{
		Employees: stubEmployees{
			createFn: func(ctx context.Context, input service.CreateEmployeeInput) (uint, error) {
				t.Fatalf("service should not be called")
				return 0, nil
			},
		},
	})

	recorder := serve(handler, http.MethodPost, "/employees", `{"name":"Carlos","birth_date":"1990.03.14"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestCreatePatientDuplicate(t *testing.T) {
	handler := newTestHandler(Services{
		Patients: stubPatients{
			createFn: func(ctx context.Context, input service.CreatePatientInput) (uint, error) {
				return 0, apperror.New(apperror.CodeDuplicate, "national ID already registered")
			},
		},
	})

	recorder := serve(handler, http.MethodPost, "/patients", `{"name":"Maria","national_id":"529.982.247-25"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestGetPatientNotFound(t *testing.T) {
	handler := newTestHandler(Services{
		Patients: stubPatients{
			getFn: func(ctx context.Context, patientID uint) (service.PatientDTO, error) {
				return service.PatientDTO{}, apperror.NotFound("patient")
			},
		},
	})

	recorder := serve(handler, http.MethodGet, "/patients/42", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestDeletePatientInternalErrorIsHidden(t *testing.T) {
	handler := newTestHandler(Services{
		Patients: stubPatients{
			deleteFn: func(ctx context.Context, patientID uint) error {
				return errors.New("connection reset")
			},
		},
	})

	recorder := serve(handler, http.MethodDelete, "/patients/1", "")
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
	if msg := decodeBody(t, recorder)["error"]; msg != "internal server error" {
		t.Fatalf("unexpected error message: %v", msg)
	}
}

func TestFindAppointmentsPassesFilters(t *testing.T) {
	handler := newTestHandler(Services{
		Appointments: stubAppointments{
			findFn: func(ctx context.Context, filter service.AppointmentFilter) ([]service.AppointmentDTO, error) {
				if filter.PatientName != "maria" || filter.NationalID != "529" || filter.Status != "Scheduled" {
					t.Fatalf("unexpected filter: %+v", filter)
				}
				return []service.AppointmentDTO{{ID: 1, Date: "20/02/2025", Time: "09:30:00"}}, nil
			},
		},
	})

	recorder := serve(handler, http.MethodGet, "/appointments?patient=maria&national_id=529&status=Scheduled", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	handler := newTestHandler(Services{
		Appointments: stubAppointments{
			statusFn: func(ctx context.Context, appointmentID uint, status string) error {
				if appointmentID != 40 || status != "Completed" {
					t.Fatalf("unexpected call: %d %s", appointmentID, status)
				}
				return nil
			},
		},
	})

	recorder := serve(handler, http.MethodPatch, "/appointments/40", `{"status":"Completed"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	recorder = serve(handler, http.MethodPut, "/appointments/40", `{"status":"Completed"}`)
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, recorder.Code)
	}
}

func TestListAuditFormatsTimestamp(t *testing.T) {
	handler := newTestHandler(Services{
		Audit: stubAudit{
			listFn: func(ctx context.Context) ([]models.AuditRecord, error) {
				return []models.AuditRecord{{
					ID:         7,
					RecordedAt: time.Date(2024, 5, 10, 12, 0, 5, 0, audit.Brasilia),
					Actor:      "system",
					Module:     "Patients",
					Action:     audit.ActionDelete,
					Details:    "Deleted patient ID 3",
				}}, nil
			},
		},
	})

	recorder := serve(handler, http.MethodGet, "/audit", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	var records []auditRecordResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(records) != 1 || records[0].RecordedAt != "10/05/2024 12:00:05" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestPurgeAuditAcceptsMixedIDs(t *testing.T) {
	handler := newTestHandler(Services{
		Audit: stubAudit{
			purgeFn: func(ctx context.Context, ids []string) (int64, error) {
				want := []string{"1", "abc", "2"}
				if len(ids) != len(want) {
					t.Fatalf("unexpected ids: %v", ids)
				}
				for i := range want {
					if ids[i] != want[i] {
						t.Fatalf("unexpected ids: %v", ids)
					}
				}
				return 2, nil
			},
		},
	})

	recorder := serve(handler, http.MethodDelete, "/audit", `{"ids":[1,"abc","2"]}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if count := decodeBody(t, recorder)["deleted_count"]; count != float64(2) {
		t.Fatalf("unexpected deleted_count: %v", count)
	}
}

func TestPurgeAuditRejectsEmptyList(t *testing.T) {
	handler := newTestHandler(Services{
		Audit: stubAudit{
			purgeFn: func(ctx context.Context, ids []string) (int64, error) {
				t.Fatalf("purge should not be called")
				return 0, nil
			},
		},
	})

	for _, body := range []string{`{"ids":[]}`, `{}`, `{"ids":"1,2"}`} {
		recorder := serve(handler, http.MethodDelete, "/audit", body)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d for %s, got %d", http.StatusBadRequest, body, recorder.Code)
		}
	}
}

func TestPurgeAuditStoreFailure(t *testing.T) {
	handler := newTestHandler(Services{
		Audit: stubAudit{
			purgeFn: func(ctx context.Context, ids []string) (int64, error) {
				return 0, errors.New("purge audit records: connection refused")
			},
		},
	})

	recorder := serve(handler, http.MethodDelete, "/audit", `{"ids":[1]}`)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
}

func TestDeleteAuditRecordNotFound(t *testing.T) {
	handler := newTestHandler(Services{
		Audit: stubAudit{
			deleteFn: func(ctx context.Context, id uint) error {
				return apperror.NotFound("audit record")
			},
		},
	})

	recorder := serve(handler, http.MethodDelete, "/audit/99", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestCounts(t *testing.T) {
	handler := newTestHandler(Services{
		Counts: stubCounts{counts: service.Counts{Roles: 1, Employees: 2, Patients: 3, Appointments: 4}},
	})

	recorder := serve(handler, http.MethodGet, "/counts", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if patients := decodeBody(t, recorder)["patients"]; patients != float64(3) {
		t.Fatalf("unexpected patients count: %v", patients)
	}
}

func TestRoutingErrors(t *testing.T) {
	handler := newTestHandler(Services{})

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/roles/abc", http.StatusBadRequest},
		{http.MethodGet, "/roles/0", http.StatusBadRequest},
		{http.MethodGet, "/unknown", http.StatusNotFound},
		{http.MethodGet, "/roles/1/extra", http.StatusNotFound},
		{http.MethodPatch, "/roles", http.StatusMethodNotAllowed},
		{http.MethodPost, "/counts", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		recorder := serve(handler, tc.method, tc.target, "")
		if recorder.Code != tc.status {
			t.Fatalf("%s %s: expected status %d, got %d", tc.method, tc.target, tc.status, recorder.Code)
		}
	}
}

func TestOutOfRangeIDsAreNotFound(t *testing.T) {
	unexpected := func(ctx context.Context, id uint) error {
		t.Fatalf("service should not be called for id %d", id)
		return nil
	}
	handler := newTestHandler(Services{
		Roles:    stubRoles{deleteFn: unexpected},
		Patients: stubPatients{deleteFn: unexpected},
		Audit:    stubAudit{deleteFn: unexpected},
	})

	cases := []struct {
		target  string
		message string
	}{
		{"/roles/3000000000", "role not found"},
		{"/roles/2147483648", "role not found"},
		{"/patients/18446744073709551616", "patient not found"},
		{"/audit/99999999999", "audit record not found"},
	}
	for _, tc := range cases {
		recorder := serve(handler, http.MethodDelete, tc.target, "")
		if recorder.Code != http.StatusNotFound {
			t.Fatalf("DELETE %s: expected status %d, got %d", tc.target, http.StatusNotFound, recorder.Code)
		}
		if msg := decodeBody(t, recorder)["error"]; msg != tc.message {
			t.Fatalf("DELETE %s: unexpected error message: %v", tc.target, msg)
		}
	}
}

func TestLargestSerialIDReachesService(t *testing.T) {
	var got uint
	handler := newTestHandler(Services{
		Roles: stubRoles{
			deleteFn: func(ctx context.Context, roleID uint) error {
				got = roleID
				return nil
			},
		},
	})

	recorder := serve(handler, http.MethodDelete, "/roles/2147483647", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if got != 2147483647 {
		t.Fatalf("unexpected role id: %d", got)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	handler := newTestHandler(Services{})

	recorder := serve(handler, http.MethodPost, "/patients", `{"name":"Maria","cpf":"1"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}
