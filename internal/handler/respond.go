package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/attaboy/puzzlequest/internal/auth"
	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		RespondJSON(w, appErr.Status, map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst. Bodies over 1 MiB
// are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeBody is DecodeJSON mapped to a validation error.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := DecodeJSON(r, dst); err != nil {
		return domain.ErrValidation("invalid request body: " + err.Error())
	}
	return nil
}

// URLUint32 parses a uint32 chi URL parameter.
func URLUint32(r *http.Request, name string) (uint32, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, domain.ErrValidation("invalid " + name)
	}
	return uint32(n), nil
}

// URLUint64 parses a uint64 chi URL parameter.
func URLUint64(r *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.ErrValidation("invalid " + name)
	}
	return n, nil
}

// Caller returns the authenticated account of the request.
func Caller(r *http.Request) (domain.Address, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return "", domain.ErrUnauthorized("no subject in context")
	}
	return sub, nil
}
