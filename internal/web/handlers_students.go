package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/b-balajis/rms-backend/internal/core"
)

// handleGetAllStudents lists the students of an admission batch.
func (s *Server) handleGetAllStudents(w http.ResponseWriter, r *http.Request) {
	batch := r.URL.Query().Get("batch")
	if batch == "" {
		s.respondError(w, r, errors.New("batch is required"), 0)
		return
	}

	students, err := s.store.Students.ByBatch(r.Context(), batch)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// handleGetStudentDetails lists the students of one department within a
// batch, with their full semester histories.
func (s *Server) handleGetStudentDetails(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	batch := r.URL.Query().Get("batch")
	if department == "" || batch == "" {
		s.respondError(w, r, errors.New("department and batch are required"), 0)
		return
	}

	students, err := s.store.Students.ByDepartmentAndBatch(r.Context(), department, batch)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// handleAddStudent creates a single student record by hand, outside the
// sheet ingestion path. Identity fields are derived from the roll number the
// same way the engine derives them.
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		RollNumber string `json:"rollNumber"`
		Department string `json:"department"`
		Batch      string `json:"batch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, errors.New("a valid JSON student body is required"), 0)
		return
	}
	if req.Name == "" || req.RollNumber == "" {
		s.respondError(w, r, errors.New("name and rollNumber are required"), 0)
		return
	}

	existing, err := s.store.Students.ByRollNumbers(r.Context(), []string{req.RollNumber})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if _, ok := existing[req.RollNumber]; ok {
		s.respondError(w, r, fmt.Errorf("duplicate key: student %s already exists", req.RollNumber), 0)
		return
	}

	reg := core.DecodeRegistration(req.RollNumber)
	batch := req.Batch
	if batch == "" {
		batch = reg.Batch
	}

	student := core.StudentRecord{
		RollNumber: req.RollNumber,
		Name:       req.Name,
		Email:      core.DeriveEmail(req.RollNumber, s.cfg.Academic.EmailDomain),
		Department: req.Department,
		Batch:      batch,
		EntryType:  reg.EntryType,
		Semesters:  []core.SemesterRecord{},
	}

	if _, err := s.store.Students.BulkApply(r.Context(), []core.WriteOp{{Insert: &student}}); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// handleStudentByRoll returns one student's full record by roll number.
func (s *Server) handleStudentByRoll(w http.ResponseWriter, r *http.Request) {
	roll := chi.URLParam(r, "rollNumber")

	students, err := s.store.Students.ByRollNumbers(r.Context(), []string{roll})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	student, ok := students[roll]
	if !ok {
		s.respondError(w, r, fmt.Errorf("student %s not found", roll), 0)
		return
	}

	writeJSON(w, http.StatusOK, student)
}
