package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/service"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

type EquipmentHandler struct {
	service   *service.EquipmentService
	validator *validator.Validate
}

func NewEquipmentHandler(service *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *EquipmentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	equipment, err := h.service.Register(r.Context(), ActorFrom(r), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, equipment)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid equipment id", err)
		return
	}

	equipment, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, equipment)
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	equipment, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, equipment)
}

func (h *EquipmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid equipment id", err)
		return
	}

	var request domain.SetEquipmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	equipment, err := h.service.SetStatus(r.Context(), ActorFrom(r), id, request.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, equipment)
}

func (h *EquipmentHandler) SetLoanability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid equipment id", err)
		return
	}

	var request domain.SetLoanabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	equipment, err := h.service.SetLoanability(r.Context(), ActorFrom(r), id, *request.AvailableForLoan)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, equipment)
}
