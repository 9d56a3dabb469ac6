package handlers

import (
	"net/http"

	"solosphere/services"

	"github.com/rs/zerolog"
)

// JobHandler handles HTTP requests for job operations
type JobHandler struct {
	svc *services.JobService
	log *zerolog.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(svc *services.JobService, logger *zerolog.Logger) *JobHandler {
	return &JobHandler{svc: svc, log: logger}
}

// CreateJob handles POST /add-job - stores the posted job as is
func (jh *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := jh.svc.Create(r.Context(), doc)
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to create job")
		return
	}
	writeJSON(w, result)
}

// ListJobs handles GET /jobs - lists every job, unpaginated
func (jh *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := jh.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to retrieve jobs")
		return
	}
	writeJSON(w, jobs)
}

// ListJobsByOwner handles GET /jobs/{email} - jobs whose buyer.email is email
func (jh *JobHandler) ListJobsByOwner(w http.ResponseWriter, r *http.Request) {
	jobs, err := jh.svc.ListByOwnerEmail(r.Context(), pathParam(r, "email"))
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to retrieve jobs")
		return
	}
	writeJSON(w, jobs)
}

// GetJob handles GET /job/{id} - responds with null when the job is absent
func (jh *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := jh.svc.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to retrieve job")
		return
	}
	writeJSON(w, job)
}

// DeleteJob handles DELETE /job/{id}
func (jh *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	result, err := jh.svc.DeleteByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to delete job")
		return
	}
	writeJSON(w, result)
}

// UpdateJob handles PUT /update-job/{id} - merges the body into the job,
// creating it when missing
func (jh *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := jh.svc.UpsertByID(r.Context(), pathParam(r, "id"), doc)
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to update job")
		return
	}
	writeJSON(w, result)
}

// SearchJobs handles GET /all-jobs?search=&filter=
func (jh *JobHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := jh.svc.Search(r.Context(), q.Get("search"), q.Get("filter"))
	if err != nil {
		writeError(w, r, jh.log, err, "Failed to search jobs")
		return
	}
	writeJSON(w, jobs)
}
