package product

import "context"

// EnvelopeKey is the top-level key wrapping products in upstream responses.
const EnvelopeKey = "products"

// Product mirrors an upstream catalog product. Variants, options and images
// are not exposed.
type Product struct {
	ID                *string
	Title             *string
	BodyHTML          *string
	Vendor            *string
	ProductType       *string
	Handle            *string
	Tags              *string
	Status            *string
	TemplateSuffix    *string
	PublishedScope    *string
	AdminGraphqlAPIID *string
	CreatedAt         *string
	UpdatedAt         *string
	PublishedAt       *string
}

// Source fetches the raw upstream products document.
type Source interface {
	FetchProducts(ctx context.Context) ([]byte, error)
}
