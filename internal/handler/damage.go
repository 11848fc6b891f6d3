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

type DamageHandler struct {
	service   *service.DamageService
	validator *validator.Validate
}

func NewDamageHandler(service *service.DamageService) *DamageHandler {
	return &DamageHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *DamageHandler) Report(w http.ResponseWriter, r *http.Request) {
	var request domain.ReportDamageRequest
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

	report, err := h.service.Report(r.Context(), ActorFrom(r), equipmentID, &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, report)
}

func (h *DamageHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid damage report id", err)
		return
	}

	var request domain.ResolveDamageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	report, err := h.service.Resolve(r.Context(), ActorFrom(r), id, request.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, report)
}

func (h *DamageHandler) List(w http.ResponseWriter, r *http.Request) {
	if equipment := r.URL.Query().Get("equipment"); equipment != "" {
		equipmentID, err := uuid.Parse(equipment)
		if err != nil {
			response.BadRequest(w, "invalid equipment id", err)
			return
		}

		reports, err := h.service.ListByEquipment(r.Context(), equipmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		response.Success(w, reports)
		return
	}

	reports, err := h.service.ListOpen(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, reports)
}
