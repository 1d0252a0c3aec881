package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/b-balajis/rms-backend/internal/core"
	"github.com/b-balajis/rms-backend/internal/logging"
	"github.com/b-balajis/rms-backend/internal/sheet"
)

// ingestFunc is one of the engine's three ingestion flows.
type ingestFunc func(ctx context.Context, params core.BatchParams, rows []core.Row) (*core.BatchReport, error)

// handleCreateRecords ingests an initial result sheet, creating student
// records for a new admission batch.
func (s *Server) handleCreateRecords(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.engine.CreateRecords)
}

// handleUpdateRecords ingests a subsequent-semester result sheet, appending
// the semester to existing student records.
func (s *Server) handleUpdateRecords(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.engine.UpdateRecords)
}

// handleUpdateSupplyMarks ingests a supplementary-exam sheet, correcting
// individual subject results inside recorded semesters.
func (s *Server) handleUpdateSupplyMarks(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.engine.UpdateSupplyMarks)
}

// ingest is the shared upload path: read and parse the sheet, claim an
// ingestion slot, run the flow under the batch timeout and return the
// partial-success report.
func (s *Server) ingest(w http.ResponseWriter, r *http.Request, run ingestFunc) {
	rows, params, err := s.readSheet(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	report, err := run(ctx, params, rows)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Info("ingestion batch finished",
		"batch_id", report.BatchID,
		"semester", params.Semester,
		"total_rows", report.TotalRows,
		"inserted", report.Inserted,
		"modified", report.Modified,
		"duration_ms", report.Duration.Milliseconds(),
	)

	writeJSON(w, http.StatusOK, report)
}

// readSheet extracts the uploaded file and batch parameters from a
// multipart form and parses the file into rows.
func (s *Server) readSheet(w http.ResponseWriter, r *http.Request) ([]core.Row, core.BatchParams, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, core.BatchParams{}, errors.New("file is required and must be within the size limit")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, core.BatchParams{}, errors.New("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, core.BatchParams{}, err
	}

	rows, err := sheet.Parse(header.Filename, data)
	if err != nil {
		return nil, core.BatchParams{}, err
	}

	params := core.BatchParams{
		Semester:   r.FormValue("semester"),
		Regulation: r.FormValue("regulation"),
		Batch:      r.FormValue("batch"),
	}
	return rows, params, nil
}
