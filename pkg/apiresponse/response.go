// Package apiresponse defines the uniform JSON envelope of the gateway
// API: {success, data, error}. Handlers never write raw payloads.
package apiresponse

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK writes a successful envelope with the given payload.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Success: true, Data: data})
}

// Fail writes a failure envelope with the given error message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Response{Success: false, Error: message})
}

// FailWithData writes a failure envelope that still carries a payload,
// e.g. a response id for a failed guardrail run.
func FailWithData(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Response{Success: false, Data: data, Error: message})
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
