package subscription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EventOrderCompleted is the only commerce event with side effects.
const EventOrderCompleted = "order.completed"

// Order is the data block of an order.completed webhook.
type Order struct {
	ClientEmail string  `json:"client_email" validate:"required,email"`
	ClientName  string  `json:"client_name"`
	OrderID     OrderID `json:"order_id"`
	ProductID   OrderID `json:"product_id"`
}

// OrderID accepts both JSON numbers and strings, since the store sends
// numeric ids.
type OrderID string

func (id *OrderID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = OrderID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("order id must be a string or number: %w", err)
		}
		*id = OrderID(n.String())
	}
	return nil
}

func (id OrderID) String() string { return string(id) }

// ParseOrder decodes the data block of an order.completed event. Unknown
// fields are ignored; the commerce payload carries many more.
func ParseOrder(data []byte) (Order, error) {
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return Order{}, err
	}
	o.ClientEmail = strings.ToLower(strings.TrimSpace(o.ClientEmail))
	o.ClientName = strings.TrimSpace(o.ClientName)
	return o, nil
}
