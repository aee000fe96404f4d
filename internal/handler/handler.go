// Package handler binds the GraphQL schema to the upstream shop.
package handler

import (
	"context"
	_ "embed"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/graph-gophers/graphql-go"
	gqlotel "github.com/graph-gophers/graphql-go/trace/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/shop-graphql/internal/domain/order"
	"github.com/xenking/shop-graphql/internal/domain/product"
)

// Schema is the GraphQL SDL served by the facade.
//
//go:embed schema.graphql
var Schema string

// Handler is the root Query resolver. Each field maps to exactly one upstream
// call whose envelope is unwrapped and returned as is.
type Handler struct {
	orderSource   order.Source
	productSource product.Source
}

// NewHandler constructs a Handler backed by the given sources.
func NewHandler(orders order.Source, products product.Source) *Handler {
	return &Handler{
		orderSource:   orders,
		productSource: products,
	}
}

// Orders resolves Query.orders.
func (h *Handler) Orders(ctx context.Context) ([]*order.Order, error) {
	raw, err := h.orderSource.FetchOrders(ctx)
	if err != nil {
		return nil, resolveError(ctx, "orders", errors.Wrap(err, "fetch orders"))
	}
	orders, err := order.Decode(raw)
	if err != nil {
		return nil, resolveError(ctx, "orders", err)
	}
	return orders, nil
}

// Products resolves Query.products.
func (h *Handler) Products(ctx context.Context) ([]*product.Product, error) {
	raw, err := h.productSource.FetchProducts(ctx)
	if err != nil {
		return nil, resolveError(ctx, "products", errors.Wrap(err, "fetch products"))
	}
	products, err := product.Decode(raw)
	if err != nil {
		return nil, resolveError(ctx, "products", err)
	}
	return products, nil
}

func resolveError(ctx context.Context, field string, err error) error {
	zctx.From(ctx).Warn("Resolve failed",
		zap.String("field", field),
		zap.Error(err),
	)
	return err
}

// NewSchema parses Schema against h. Struct fields of the domain types serve
// as field resolvers.
func NewSchema(h *Handler, tp trace.TracerProvider) (*graphql.Schema, error) {
	opts := []graphql.SchemaOpt{
		graphql.UseFieldResolvers(),
		graphql.MaxDepth(8),
		graphql.Logger(panicLogger{}),
	}
	if tp != nil {
		opts = append(opts, graphql.Tracer(&gqlotel.Tracer{
			Tracer: tp.Tracer("github.com/xenking/shop-graphql/internal/handler"),
		}))
	}
	schema, err := graphql.ParseSchema(Schema, h, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "parse schema")
	}
	return schema, nil
}

// panicLogger reports resolver panics through the request logger.
type panicLogger struct{}

func (panicLogger) LogPanic(ctx context.Context, value interface{}) {
	zctx.From(ctx).Error("Resolver panic",
		zap.Any("panic", value),
		zap.Stack("stack"),
	)
}
