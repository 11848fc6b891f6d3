package handler

import (
	"errors"
	"net/http"

	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
	"github.com/acadlab/equipment-loan-engine/pkg/response"
)

// writeError maps the validation taxonomy onto HTTP statuses. Every
// rejected operation carries its code and message so the caller can
// render an actionable explanation.
func writeError(w http.ResponseWriter, err error) {
	var businessErr *apperrors.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "unexpected error", err)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrDuplicateActiveRequest):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrEquipmentUnavailable),
		errors.Is(err, apperrors.ErrBorrowerBlocked),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrMissingJustification):
		status = http.StatusUnprocessableEntity
	}

	response.ErrorWithCode(w, status, businessErr.Code, businessErr.Message)
}
