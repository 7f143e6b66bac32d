package response

import (
	"net/http"

	"marketplace-booking/pkg/apperror"

	"github.com/sirupsen/logrus"
)

// ErrorBody is the error payload of a failed domain operation.
type ErrorBody struct {
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// FromError answers with the status that matches err's kind. Errors that are
// not domain errors are logged and reported as a generic 500.
func FromError(w http.ResponseWriter, log *logrus.Logger, err error) {
	appErr := apperror.From(err)
	if appErr == nil {
		InternalServerError(w, "")
		return
	}

	if appErr.Kind == apperror.KindInternal {
		if log != nil {
			log.WithError(err).Error("Unhandled error")
		}
		InternalServerError(w, "")
		return
	}

	Error(w, appErr.Kind.HTTPStatus(), appErr.Message, ErrorBody{
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}
