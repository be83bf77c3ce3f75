package api

import (
	"errors"
	"net/http"

	"github.com/okian/salarycast/internal/adapters/repository"
	service "github.com/okian/salarycast/internal/app"
	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/features"
	"github.com/okian/salarycast/internal/domain/labels"
	"github.com/okian/salarycast/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Response codes that are not prediction kinds.
const (
	codeBadRequest    = "bad_request"
	codeNotFound      = "not_found"
	codeBatchTooLarge = "batch_too_large"
	codeInternal      = "internal_error"
)

// genericInference is shown instead of model internals.
const genericInference = "prediction failed due to an internal error"

// errorFor maps a service error to a status and a body carrying the field,
// offending value and valid values where the error has them.
func errorFor(err error) (int, types.ErrorBody) {
	body := types.ErrorBody{Code: service.Kind(err), Message: err.Error()}

	var pe *service.PredictionError
	if errors.As(err, &pe) {
		body.Stage = pe.Stage.String()
	}

	var (
		ip *service.IncompleteProfileError
		ul *labels.UnresolvableLabelError
		uc *codec.UnknownCategoryError
		tm *features.TypeMismatchError
	)
	switch {
	case errors.As(err, &ip):
		body.Missing = ip.Fields
		if len(ip.Fields) == 1 {
			body.Field = ip.Fields[0]
		}
		return http.StatusBadRequest, body
	case errors.As(err, &ul):
		body.Field, body.Value, body.Valid = ul.Feature, ul.Value, ul.Valid
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &uc):
		body.Field, body.Value, body.Valid = uc.Feature, uc.Value, uc.Valid
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &tm):
		body.Field, body.Value = tm.Feature, tm.Value
		return http.StatusBadRequest, body
	case errors.Is(err, service.ErrInferenceFailure):
		body.Message = genericInference
		return http.StatusInternalServerError, body
	case errors.Is(err, service.ErrNotLoaded), errors.Is(err, repository.ErrMissingArtifact):
		body.Code = service.KindNotReady
		return http.StatusServiceUnavailable, body
	case errors.Is(err, service.ErrBatchTooLarge):
		body.Code = codeBatchTooLarge
		return http.StatusRequestEntityTooLarge, body
	case errors.Is(err, service.ErrUnknownFeature):
		body.Code = codeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, ErrBadRequest):
		body.Code = codeBadRequest
		return http.StatusBadRequest, body
	default:
		body.Code = codeInternal
		return http.StatusInternalServerError, body
	}
}
