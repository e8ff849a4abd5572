package json

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func WriteRawJSON(w http.ResponseWriter, status int, data []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err := w.Write(data)
	return err
}

type errorEnvelope struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func WriteJSONError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, errorEnvelope{Error: message})
}

// WriteJSONErrorReason adds a machine readable reason next to the message.
func WriteJSONErrorReason(w http.ResponseWriter, status int, message, reason string) error {
	return WriteJSON(w, status, errorEnvelope{Error: message, Reason: reason})
}

// ReadJSON decodes a single JSON document from the request body.
func ReadJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	if decoder.More() {
		return fmt.Errorf("invalid JSON body: multiple documents")
	}

	return nil
}
