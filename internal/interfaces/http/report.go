package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"brisa/internal/domain/report"
	"brisa/internal/shared/middleware"
)

type ReportHandler struct {
	reports *report.Service
}

func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HandleSummary serves the period summary as JSON. The period comes
// from from/to query parameters in YYYY-MM-DD form and defaults to the
// current month.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleExpenseChart serves the expense breakdown as a PNG pie chart.
func (h *ReportHandler) HandleExpenseChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}

	png, err := report.ExpensePieChart(summary)
	if err != nil {
		if errors.Is(err, report.ErrNothingToChart) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("failed to render expense chart")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleBalanceChart serves period income vs expenses as a PNG bar chart.
func (h *ReportHandler) HandleBalanceChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}

	png, err := report.IncomeExpenseBarChart(summary)
	if err != nil {
		if errors.Is(err, report.ErrNothingToChart) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("failed to render balance chart")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *ReportHandler) summarize(w http.ResponseWriter, r *http.Request) (*report.Summary, bool) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	period, err := parsePeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	summary, err := h.reports.Summarize(r.Context(), ownerID, period)
	if err != nil {
		if errors.Is(err, report.ErrInvalidPeriod) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to build summary")
		http.Error(w, "Failed to build summary", http.StatusInternalServerError)
		return nil, false
	}
	return summary, true
}

func parsePeriod(r *http.Request) (report.Period, error) {
	now := time.Now().UTC()
	period := report.Period{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return report.Period{}, errors.New("invalid from date, expected YYYY-MM-DD")
		}
		period.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return report.Period{}, errors.New("invalid to date, expected YYYY-MM-DD")
		}
		// Include the whole end day.
		period.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	return period, nil
}
