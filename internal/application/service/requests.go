package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TemirB/carts-service/internal/domain"
)

type emailRequest struct {
	Email string `json:"email"`
}

type updateRequest struct {
	Email    string   `json:"email"`
	ProdName string   `json:"prodName"`
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
	ImageURL []string `json:"imageURL"`
	FullName string   `json:"fullName"`
}

func (r updateRequest) item() domain.Item {
	return domain.Item{
		ProductID: r.ProdName,
		FullName:  r.FullName,
		ImageURLs: r.ImageURL,
		Quantity:  *r.Quantity,
		UnitPrice: *r.Price,
	}
}

type cartRequest struct {
	Email    string      `json:"email"`
	CartInfo domain.Cart `json:"cartInfo"`
}

// decode reads body into v. A body that does not unmarshal is reported as
// invalid, wrapped in the caller's sentinel.
func decode(body json.RawMessage, v any, invalid error) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", invalid, err)
	}
	return nil
}

func missing(s string) bool {
	return strings.TrimSpace(s) == ""
}
