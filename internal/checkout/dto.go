package checkout

import (
	"github.com/google/uuid"

	"github.com/malpra/marketplace-backend/pkg/enums"
	"github.com/malpra/marketplace-backend/pkg/types"
)

// CartLine is one requested item in a placement request.
type CartLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// PlaceOrderInput captures the full placement request.
type PlaceOrderInput struct {
	Items           []CartLine
	PaymentMethod   enums.PaymentMethod
	ShippingAddress types.Address
}
