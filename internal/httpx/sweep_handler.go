package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tcgshop/checkout-core/internal/sweep"
)

// SweepRunner is satisfied by *sweep.Service.
type SweepRunner interface {
	Run(ctx context.Context) (sweep.Result, error)
}

// SweepHandler exposes the reservation expiry sweep behind two triggers that
// differ only in which shared secret authorizes them: the scheduled endpoint
// takes CRON_SECRET, the manual one takes ADMIN_API_KEY or CRON_SECRET.
// Unauthorized calls are rejected before the database is touched.
type SweepHandler struct {
	Runner      SweepRunner
	CronSecret  string
	AdminAPIKey string
}

func (h *SweepHandler) Register(r *chi.Mux) {
	r.Post("/cron/reservations/sweep", h.cron)
	r.Post("/admin/reservations/sweep", h.manual)
}

type sweepResp struct {
	Success              bool       `json:"success"`
	Message              string     `json:"message"`
	CancelledOrders      int        `json:"cancelledOrders"`
	ReleasedReservations int        `json:"releasedReservations"`
	ProcessedAt          *time.Time `json:"processedAt,omitempty"`
}

func (h *SweepHandler) cron(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.CronSecret)
}

func (h *SweepHandler) manual(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, h.AdminAPIKey, h.CronSecret)
}

func (h *SweepHandler) trigger(w http.ResponseWriter, r *http.Request, secrets ...string) {
	if sweep.Authorize(r.Header.Get("Authorization"), secrets...) == sweep.Unauthorized {
		writeJSON(w, http.StatusUnauthorized, sweepResp{Success: false, Message: "unauthorized"})
		return
	}

	res, err := h.Runner.Run(r.Context())
	if err != nil {
		// rollback already happened; report nothing about internals
		writeJSON(w, http.StatusInternalServerError, sweepResp{Success: false, Message: "reservation sweep failed"})
		return
	}

	msg := "no expired reservations"
	if res.ReleasedReservations > 0 || res.CancelledOrders > 0 {
		msg = "expired reservations released"
	}
	writeJSON(w, http.StatusOK, sweepResp{
		Success:              true,
		Message:              msg,
		CancelledOrders:      res.CancelledOrders,
		ReleasedReservations: res.ReleasedReservations,
		ProcessedAt:          &res.ProcessedAt,
	})
}
