package order

import "context"

// EnvelopeKey is the top-level key wrapping orders in upstream responses.
const EnvelopeKey = "orders"

// Order mirrors an upstream order. Nil fields were null or absent upstream.
type Order struct {
	ID                  *string
	Email               *string
	ContactEmail        *string
	Phone               *string
	Name                *string
	Number              *int32
	OrderNumber         *int32
	Token               *string
	Note                *string
	Tags                *string
	Gateway             *string
	Currency            *string
	FinancialStatus     *string
	FulfillmentStatus   *string
	SubtotalPrice       *string
	TotalLineItemsPrice *string
	TotalPrice          *string
	TotalDiscounts      *string
	TotalTax            *string
	TotalWeight         *int32
	Test                *bool
	Confirmed           *bool
	CreatedAt           *string
	UpdatedAt           *string
	ProcessedAt         *string
	CancelledAt         *string
	ClosedAt            *string
	LineItems           []*LineItem
}

// LineItem is a single entry of Order.LineItems.
type LineItem struct {
	ID                         *string
	Title                      *string
	Name                       *string
	Quantity                   *int32
	FulfillableQuantity        *int32
	VariantID                  *string
	VariantTitle               *string
	VariantInventoryManagement *string
	ProductID                  *string
	ProductExists              *bool
	SKU                        *string
	Vendor                     *string
	Price                      *string
	TotalDiscount              *string
	Grams                      *int32
	FulfillmentService         *string
	FulfillmentStatus          *string
	RequiresShipping           *bool
	Taxable                    *bool
	GiftCard                   *bool
}

// Source fetches the raw upstream orders document.
type Source interface {
	FetchOrders(ctx context.Context) ([]byte, error)
}
