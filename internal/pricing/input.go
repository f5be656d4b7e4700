package pricing

import (
	"encoding/json"
	"math"
	"strings"
)

// Input is the wire form of a pricing request. Numeric fields are kept as
// json.Number so that a missing value can be told apart from zero.
type Input struct {
	ProductID     *int        `json:"productId,omitempty"`
	Brand         string      `json:"brand"`
	Model         string      `json:"model,omitempty"`
	Condition     string      `json:"condition"`
	OriginalPrice json.Number `json:"originalPrice"`
	UsageDuration json.Number `json:"usageDuration"`
	Category      string      `json:"category"`
}

// Request converts the wire form into a Request, rejecting missing or
// non-numeric price and usage values.
func (in Input) Request() (Request, error) {
	price, err := parseNumber("originalPrice", in.OriginalPrice)
	if err != nil {
		return Request{}, err
	}

	usage, err := parseNumber("usageDuration", in.UsageDuration)
	if err != nil {
		return Request{}, err
	}
	if usage != math.Trunc(usage) {
		return Request{}, &InvalidInputError{Field: "usageDuration", Reason: "must be a whole number of months"}
	}
	if usage > math.MaxInt32 {
		return Request{}, &InvalidInputError{Field: "usageDuration", Reason: "is too large"}
	}

	req := Request{
		Brand:         in.Brand,
		Condition:     in.Condition,
		OriginalPrice: price,
		UsageDuration: int(usage),
		Category:      in.Category,
	}
	if err := req.validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func parseNumber(field string, n json.Number) (float64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, &InvalidInputError{Field: field, Reason: "is required"}
	}
	v, err := json.Number(s).Float64()
	if err != nil {
		return 0, &InvalidInputError{Field: field, Reason: "must be a number"}
	}
	return v, nil
}
