package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/callisto/pkg/proxy/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the content-type header and reports encoding errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an error response with the status code
// implied by its error type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

// ErrorResponseFor converts an executor error into the API error
// envelope. Bad-request errors map to 400, execution errors to 502,
// anything unrecognized to 500.
func ErrorResponseFor(err error) *types.ErrorResponse {
	if reqErr, ok := err.(*RequestError); ok {
		switch reqErr.Kind {
		case KindBadRequest:
			return types.NewInvalidRequestError(reqErr.Message, reqErr.Param, reqErr.Code)
		case KindExecution:
			return types.NewBadGatewayError(reqErr.Message)
		}
	}
	return types.NewServerError("An internal error occurred. Please try again later.")
}
