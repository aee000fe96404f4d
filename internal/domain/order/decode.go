package order

import (
	"github.com/go-faster/jx"

	"github.com/xenking/shop-graphql/internal/domain/envelope"
)

// ErrMissingEnvelope is returned by Decode when the "orders" key is absent.
var ErrMissingEnvelope = envelope.ErrMissing

// Decode extracts the orders array from an upstream response body.
func Decode(data []byte) ([]*Order, error) {
	out := make([]*Order, 0)
	if err := envelope.Decode(data, EnvelopeKey, func(d *jx.Decoder) error {
		o := new(Order)
		if err := o.decode(d); err != nil {
			return err
		}
		out = append(out, o)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Order) decode(d *jx.Decoder) error {
	return envelope.Object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			o.ID, err = envelope.String(d)
		case "email":
			o.Email, err = envelope.String(d)
		case "contact_email":
			o.ContactEmail, err = envelope.String(d)
		case "phone":
			o.Phone, err = envelope.String(d)
		case "name":
			o.Name, err = envelope.String(d)
		case "number":
			o.Number, err = envelope.Int(d)
		case "order_number":
			o.OrderNumber, err = envelope.Int(d)
		case "token":
			o.Token, err = envelope.String(d)
		case "note":
			o.Note, err = envelope.String(d)
		case "tags":
			o.Tags, err = envelope.String(d)
		case "gateway":
			o.Gateway, err = envelope.String(d)
		case "currency":
			o.Currency, err = envelope.String(d)
		case "financial_status":
			o.FinancialStatus, err = envelope.String(d)
		case "fulfillment_status":
			o.FulfillmentStatus, err = envelope.String(d)
		case "subtotal_price":
			o.SubtotalPrice, err = envelope.String(d)
		case "total_line_items_price":
			o.TotalLineItemsPrice, err = envelope.String(d)
		case "total_price":
			o.TotalPrice, err = envelope.String(d)
		case "total_discounts":
			o.TotalDiscounts, err = envelope.String(d)
		case "total_tax":
			o.TotalTax, err = envelope.String(d)
		case "total_weight":
			o.TotalWeight, err = envelope.Int(d)
		case "test":
			o.Test, err = envelope.Bool(d)
		case "confirmed":
			o.Confirmed, err = envelope.Bool(d)
		case "created_at":
			o.CreatedAt, err = envelope.String(d)
		case "updated_at":
			o.UpdatedAt, err = envelope.String(d)
		case "processed_at":
			o.ProcessedAt, err = envelope.String(d)
		case "cancelled_at":
			o.CancelledAt, err = envelope.String(d)
		case "closed_at":
			o.ClosedAt, err = envelope.String(d)
		case "line_items":
			o.LineItems, err = decodeLineItems(d)
		default:
			return d.Skip()
		}
		return err
	})
}

func decodeLineItems(d *jx.Decoder) ([]*LineItem, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	var items []*LineItem
	if err := d.Arr(func(d *jx.Decoder) error {
		li := new(LineItem)
		if err := li.decode(d); err != nil {
			return err
		}
		items = append(items, li)
		return nil
	}); err != nil {
		return nil, err
	}
	return items, nil
}

func (li *LineItem) decode(d *jx.Decoder) error {
	return envelope.Object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			li.ID, err = envelope.String(d)
		case "title":
			li.Title, err = envelope.String(d)
		case "name":
			li.Name, err = envelope.String(d)
		case "quantity":
			li.Quantity, err = envelope.Int(d)
		case "fulfillable_quantity":
			li.FulfillableQuantity, err = envelope.Int(d)
		case "variant_id":
			li.VariantID, err = envelope.String(d)
		case "variant_title":
			li.VariantTitle, err = envelope.String(d)
		case "variant_inventory_management":
			li.VariantInventoryManagement, err = envelope.String(d)
		case "product_id":
			li.ProductID, err = envelope.String(d)
		case "product_exists":
			li.ProductExists, err = envelope.Bool(d)
		case "sku":
			li.SKU, err = envelope.String(d)
		case "vendor":
			li.Vendor, err = envelope.String(d)
		case "price":
			li.Price, err = envelope.String(d)
		case "total_discount":
			li.TotalDiscount, err = envelope.String(d)
		case "grams":
			li.Grams, err = envelope.Int(d)
		case "fulfillment_service":
			li.FulfillmentService, err = envelope.String(d)
		case "fulfillment_status":
			li.FulfillmentStatus, err = envelope.String(d)
		case "requires_shipping":
			li.RequiresShipping, err = envelope.Bool(d)
		case "taxable":
			li.Taxable, err = envelope.Bool(d)
		case "gift_card":
			li.GiftCard, err = envelope.Bool(d)
		default:
			return d.Skip()
		}
		return err
	})
}
