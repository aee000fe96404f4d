package product

import (
	"github.com/go-faster/jx"

	"github.com/xenking/shop-graphql/internal/domain/envelope"
)

// ErrMissingEnvelope is returned by Decode when the "products" key is absent.
var ErrMissingEnvelope = envelope.ErrMissing

// Decode extracts the products array from an upstream response body.
func Decode(data []byte) ([]*Product, error) {
	out := make([]*Product, 0)
	if err := envelope.Decode(data, EnvelopeKey, func(d *jx.Decoder) error {
		p := new(Product)
		if err := p.decode(d); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Product) decode(d *jx.Decoder) error {
	return envelope.Object(d, func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "id":
			p.ID, err = envelope.String(d)
		case "title":
			p.Title, err = envelope.String(d)
		case "body_html":
			p.BodyHTML, err = envelope.String(d)
		case "vendor":
			p.Vendor, err = envelope.String(d)
		case "product_type":
			p.ProductType, err = envelope.String(d)
		case "handle":
			p.Handle, err = envelope.String(d)
		case "tags":
			p.Tags, err = envelope.String(d)
		case "status":
			p.Status, err = envelope.String(d)
		case "template_suffix":
			p.TemplateSuffix, err = envelope.String(d)
		case "published_scope":
			p.PublishedScope, err = envelope.String(d)
		case "admin_graphql_api_id":
			p.AdminGraphqlAPIID, err = envelope.String(d)
		case "created_at":
			p.CreatedAt, err = envelope.String(d)
		case "updated_at":
			p.UpdatedAt, err = envelope.String(d)
		case "published_at":
			p.PublishedAt, err = envelope.String(d)
		default:
			return d.Skip()
		}
		return err
	})
}
