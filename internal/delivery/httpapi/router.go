package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the API surface. Caller identity arrives in X-Actor-ID and
// X-Actor-Role headers from the authenticating edge proxy.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Actor-ID", "X-Actor-Role"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/escrows", func(r chi.Router) {
			r.Post("/", h.CreateEscrow)
			r.Route("/{escrowID}", func(r chi.Router) {
				r.Get("/", h.GetEscrow)
				r.Get("/summary", h.GetEscrowSummary)
				r.Get("/transactions", h.GetEscrowTransactions)
				r.Post("/fund", h.FundEscrow)
				r.Post("/cancel", h.CancelEscrow)
				r.Post("/disputes", h.InitiateDispute)

				r.Route("/milestones/{milestoneID}", func(r chi.Router) {
					r.Post("/start", h.StartMilestone)
					r.Post("/submit", h.SubmitMilestone)
					r.Post("/approve", h.ApproveMilestone)
					r.Post("/reject", h.RejectMilestone)
					r.Post("/release", h.ReleaseMilestone)
					r.Post("/deliverables", h.AddDeliverable)
				})
				r.Post("/deliverables/{deliverableID}/review", h.ReviewDeliverable)
			})
		})

		r.Route("/disputes", func(r chi.Router) {
			r.Get("/", h.ListDisputes)
			r.Get("/{disputeID}", h.GetDispute)
			r.Post("/{disputeID}/resolve", h.ResolveDispute)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Post("/time-entries", h.LogTime)
			r.Post("/time-entries/{entryID}/review", h.ReviewTimeEntry)
			r.Get("/periods/{periodID}", h.GetPeriod)
			r.Get("/contracts/{contractID}/current-period", h.GetCurrentPeriod)
			r.Post("/contracts/{contractID}/process", h.ProcessPayment)
		})

		r.Get("/transactions/{transactionID}", h.GetTransaction)
	})

	return r
}
