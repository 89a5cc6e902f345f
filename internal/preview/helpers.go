package preview

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := mapError(err)
	if id := middleware.GetReqID(r.Context()); id != "" {
		mapped = mapped.WithRequestID(id)
	}
	writeJSON(w, mapped.Code, mapped.ToErrorResponse(false, nil))
}

// mapError converts err into a go-errors value carrying the HTTP status.
func mapError(err error) *goerrors.Error {
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers()).Clone()
	if mapped.Code == 0 {
		mapped.Code = statusFor(mapped.Category)
	}
	mapped.Location = nil
	if mapped.TextCode == "" {
		mapped.TextCode = goerrors.HTTPStatusToTextCode(mapped.Code)
	}
	return mapped
}

func statusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return goerrors.CodeBadRequest
	case goerrors.CategoryNotFound:
		return goerrors.CodeNotFound
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return goerrors.CodeInternal
	}
}
