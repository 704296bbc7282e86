package domain

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every operation produces. Body holds the
// JSON-encoded Payload.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type Payload struct {
	Message    string `json:"message"`
	Carts      *Cart  `json:"carts,omitempty"`
	CheckoutID string `json:"checkoutId,omitempty"`
}

func NewResponse(status int, p Payload) Response {
	b, err := json.Marshal(p)
	if err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    jsonHeaders(),
			Body:       `{"message":"Server Error"}`,
		}
	}
	return Response{
		StatusCode: status,
		Headers:    jsonHeaders(),
		Body:       string(b),
	}
}

func OK(message string, carts Cart) Response {
	p := Payload{Message: message}
	if carts != nil {
		p.Carts = &carts
	}
	return NewResponse(http.StatusOK, p)
}

func ErrorResponse(err error) Response {
	return NewResponse(StatusOf(err), Payload{Message: MessageOf(err)})
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}
