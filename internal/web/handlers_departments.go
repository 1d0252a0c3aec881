package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/b-balajis/rms-backend/internal/store"
)

// handleListDepartments lists all departments with descriptions.
func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.store.Departments.ListDetailed(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, departments)
}

// handleCreateDepartment inserts a department from a JSON body.
func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := decodeDepartment(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if dept.Code == "" {
		s.respondError(w, r, errors.New("department code is required"), 0)
		return
	}

	if err := s.store.Departments.Create(r.Context(), dept); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusCreated, dept)
}

// handleUpdateDepartment replaces a department's name and description.
func (s *Server) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := decodeDepartment(r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	// The URL code wins over whatever the body carries
	dept.Code = chi.URLParam(r, "code")

	if err := s.store.Departments.Update(r.Context(), dept); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, dept)
}

// handleDeleteDepartment removes a department by code.
func (s *Server) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.store.Departments.Delete(r.Context(), code); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func decodeDepartment(r *http.Request) (store.Department, error) {
	var dept store.Department
	if err := json.NewDecoder(r.Body).Decode(&dept); err != nil {
		return store.Department{}, errors.New("a valid JSON department body is required")
	}
	if dept.Name == "" {
		return store.Department{}, errors.New("department name is required")
	}
	return dept, nil
}
