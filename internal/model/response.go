package model

import "net/http"

const NoCharactersMessage = "No characters found matching criteria"

// ResponseEnvelope is the body of every 200 response from /challengeapi.
// Data is serialized as null when absent; Message is omitted when empty.
type ResponseEnvelope struct {
	Success bool        `json:"success"`
	Data    []Character `json:"data"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the body of every 4xx/5xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Result is the outcome of one /challengeapi call. Exactly one of Success,
// Empty or Failure is produced per request and turned into a status code
// and body at the HTTP boundary.
type Result interface {
	StatusCode() int
	Body() any
}

type Success struct {
	Characters []Character
}

func (s Success) StatusCode() int { return http.StatusOK }

func (s Success) Body() any {
	return ResponseEnvelope{Success: true, Data: s.Characters}
}

type Empty struct {
	Message string
}

func (e Empty) StatusCode() int { return http.StatusOK }

func (e Empty) Body() any {
	msg := e.Message
	if msg == "" {
		msg = NoCharactersMessage
	}
	return ResponseEnvelope{Success: false, Message: msg}
}

type Failure struct {
	Code    int
	Message string
}

func (f Failure) StatusCode() int {
	if f.Code == 0 {
		return http.StatusInternalServerError
	}
	return f.Code
}

func (f Failure) Body() any {
	return ErrorResponse{Detail: f.Message}
}

// NewResult classifies an aggregation outcome that finished without error.
func NewResult(characters []Character) Result {
	if len(characters) == 0 {
		return Empty{Message: NoCharactersMessage}
	}
	return Success{Characters: characters}
}
