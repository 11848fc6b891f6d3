package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/service"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	equipmentID, err := uuid.Parse(request.EquipmentID)
	if err != nil {
		response.BadRequest(w, "invalid equipment id", err)
		return
	}

	loan, err := h.service.Create(r.Context(), ActorFrom(r), equipmentID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	loan, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	if borrower := r.URL.Query().Get("borrower"); borrower != "" {
		loans, err := h.service.ListByBorrower(r.Context(), borrower)
		if err != nil {
			writeError(w, err)
			return
		}
		response.Success(w, loans)
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.LoanStatusPending
	}

	loans, err := h.service.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *LoanHandler) decide(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string) (*domain.LoanRequest, error)) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var request domain.DecideLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	loan, err := op(r.Context(), ActorFrom(r), id, request.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	loan, err := h.service.Cancel(r.Context(), ActorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

type handoffRequest struct {
	Condition domain.ConditionInput `json:"condition" validate:"required"`
}

func (h *LoanHandler) RecordHandoff(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var request handoffRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	loan, err := h.service.RecordHandoff(r.Context(), ActorFrom(r), id, request.Condition)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

type returnRequest struct {
	Condition  domain.ConditionInput `json:"condition" validate:"required"`
	ReturnedAt *time.Time            `json:"returned_at,omitempty"`
}

func (h *LoanHandler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var request returnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	returnedAt := time.Time{}
	if request.ReturnedAt != nil {
		returnedAt = *request.ReturnedAt
	}

	result, err := h.service.RecordReturn(r.Context(), ActorFrom(r), id, request.Condition, returnedAt)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}
