package errors

import (
	"log"
	"net/http"

	"github.com/kacperborowieckb/schema-wizard/utils/json"
)

func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("internal server error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("bad request error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONError(w, http.StatusBadRequest, err.Error())
}

func InvalidInputResponse(w http.ResponseWriter, r *http.Request, err error, reason string) {
	log.Printf("invalid input error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONErrorReason(w, http.StatusBadRequest, err.Error(), reason)
}

func NotFoundResponse(w http.ResponseWriter, r *http.Request, err error, reason string) {
	log.Printf("not found error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONErrorReason(w, http.StatusNotFound, err.Error(), reason)
}

// ConflictResponse reports a stage invoked before its prerequisites exist.
func ConflictResponse(w http.ResponseWriter, r *http.Request, err error, reason string) {
	log.Printf("conflict error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONErrorReason(w, http.StatusConflict, err.Error(), reason)
}

// BadGatewayResponse reports a failure of the upstream model provider.
func BadGatewayResponse(w http.ResponseWriter, r *http.Request, err error, reason string) {
	log.Printf("bad gateway error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONErrorReason(w, http.StatusBadGateway, err.Error(), reason)
}

func GatewayTimeoutResponse(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("gateway timeout error: %s path: %s error: %s", r.Method, r.URL.Path, err.Error())
	json.WriteJSONError(w, http.StatusGatewayTimeout, "the request timed out")
}
