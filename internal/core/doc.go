// Package core implements the record reconciliation engine for the results
// management system. It turns spreadsheet rows (one row per student per
// examination cycle) into longitudinal student academic records: decoding
// registration numbers, matching curriculum subject lists, computing SGPA,
// CGPA, percentage and backlog counts, and deciding per row whether a record
// is created, updated or dropped.
//
// The package has no HTTP or storage dependencies. Persistence and reference
// data are consumed through the DepartmentCatalog, CurriculumCatalog and
// StudentStore interfaces, which the internal/store package implements
// against PostgreSQL.
//
// Processing is batch oriented: reference data is fetched once per batch,
// every row is decided in memory, and all resulting writes are submitted in
// a single bulk operation. A failing row never aborts the batch; it is
// reported in the BatchReport instead.
package core
