package handler

import (
	"net/http"
	"time"

	"github.com/acadlab/equipment-loan-engine/internal/service"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

type ReportHandler struct {
	service *service.ReportingService
}

func NewReportHandler(service *service.ReportingService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Usage serves the rolled-up loan statistics for a period. Defaults to
// the last 30 days.
func (h *ReportHandler) Usage(w http.ResponseWriter, r *http.Request) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "from must be YYYY-MM-DD", err)
			return
		}
		from = parsed
	}

	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "to must be YYYY-MM-DD", err)
			return
		}
		to = parsed
	}

	report, err := h.service.UsageReport(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, report)
}
