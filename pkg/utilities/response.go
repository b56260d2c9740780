package utilities

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body shape of every JSON response: status 0 is success,
// status 1 an application-level error.
type Envelope struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   any    `json:"data"`
}

const (
	StatusOK    = 0
	StatusError = 1
)

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a success envelope.
func WriteOK(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Status: StatusOK, Msg: "", Data: data})
}

// WriteError writes an error envelope. data may be nil.
func WriteError(w http.ResponseWriter, code int, msg string, data any) {
	WriteJSON(w, code, Envelope{Status: StatusError, Msg: msg, Data: data})
}
