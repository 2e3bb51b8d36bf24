package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Type distinguishes how an order is fulfilled. Delivery orders are the only
// kind that can carry a courier assignment and a delivery location.
type Type int

const (
	// TypeUnknown represents an invalid or undefined order type.
	TypeUnknown Type = iota

	// TypeDelivery is a courier-delivered order.
	TypeDelivery

	// TypePickup is collected by the customer at the branch.
	TypePickup

	// TypeDineIn is consumed at the branch.
	TypeDineIn

	// TypeTable is a table-service order.
	TypeTable
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		TypeUnknown:  "unknown",
		TypeDelivery: "delivery",
		TypePickup:   "pickup",
		TypeDineIn:   "dine_in",
		TypeTable:    "table",
	}
}

// TypeFromString parses a wire representation back into a Type.
// Returns an error for unknown strings, including "unknown" itself.
func TypeFromString(s string) (Type, error) {
	for typ, str := range getTypeStrings() {
		if str == s && typ != TypeUnknown {
			return typ, nil
		}
	}
	return TypeUnknown, errs.NewValueIsInvalidErrorWithCause("orderType", fmt.Errorf("%q is not a valid order type", s))
}

// Validate checks if the Type value is valid.
func (t Type) Validate() error {
	if t <= TypeUnknown || t > TypeTable {
		return errs.NewValueIsInvalidErrorWithCause("orderType", fmt.Errorf("%d is not a valid order type", t))
	}
	return nil
}

// String returns the wire name of the order type.
// This method implements the fmt.Stringer interface.
func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "unknown"
}
