package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Greeting is the body of GET /.
const Greeting = "Hello from SoloSphere Server...."

// NewRouter registers the marketplace routes plus /health and /metrics.
func NewRouter(jobs *JobHandler, bids *BidHandler, logger *zerolog.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID, RequestLog(logger), Recover(logger), CORS, Timeout(timeout))

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/add-job", jobs.CreateJob)
	r.Get("/jobs", jobs.ListJobs)
	r.Get("/jobs/{email}", jobs.ListJobsByOwner)
	r.Get("/job/{id}", jobs.GetJob)
	r.Delete("/job/{id}", jobs.DeleteJob)
	r.Put("/update-job/{id}", jobs.UpdateJob)
	r.Get("/all-jobs", jobs.SearchJobs)

	r.Post("/add-bids", bids.CreateBid)
	r.Get("/bids/{email}", bids.ListBids)
	r.Patch("/bid-status-update/{id}", bids.UpdateBidStatus)

	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, Greeting)
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy"}`)
}
