package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/acadlab/equipment-loan-engine/internal/service"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

type PenaltyHandler struct {
	service *service.PenaltyService
}

func NewPenaltyHandler(service *service.PenaltyService) *PenaltyHandler {
	return &PenaltyHandler{service: service}
}

func (h *PenaltyHandler) List(w http.ResponseWriter, r *http.Request) {
	borrower := r.URL.Query().Get("borrower")
	if borrower == "" {
		response.BadRequest(w, "borrower query parameter is required", nil)
		return
	}

	penalties, err := h.service.ListByBorrower(r.Context(), borrower)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, penalties)
}

func (h *PenaltyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid penalty id", err)
		return
	}

	penalty, err := h.service.Cancel(r.Context(), ActorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, penalty)
}
