package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/minsukang/paylink/internal/gateway/toss"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

type errorMapping struct {
	err     error
	status  int
	code    string
	message string // overrides the error text when set
}

var errorMappings = []errorMapping{
	{domainErrors.ErrPaymentRequestNotFound, http.StatusNotFound, "not_found", "Not found"},
	{domainErrors.ErrLeadNotFound, http.StatusNotFound, "not_found", "Not found"},
	{domainErrors.ErrQuoteNotFound, http.StatusNotFound, "not_found", "Not found"},
	{domainErrors.ErrGatewayNotConfigured, http.StatusBadRequest, "gateway_not_configured", ""},
	{domainErrors.ErrPaymentRequestExpired, http.StatusGone, "expired", ""},
	{domainErrors.ErrGatewayUnavailable, http.StatusBadRequest, "gateway_unavailable", ""},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	// Gateway failures surface the gateway's own message, per the payment
	// screen's contract.
	var gwErr *toss.GatewayError
	if errors.As(err, &gwErr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: gwErr.Message, Code: "gateway_error"})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			if m.message != "" {
				resp.Error = m.message
			}
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}
