package app

import "publimar/internal/core"

// ClientResult is returned by single-client operations.
type ClientResult struct {
	Client *core.Client
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
}

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// QuoteResult is returned by quote lifecycle operations.
type QuoteResult struct {
	Quote *core.Quote
}

// QuoteListResult is returned by ListQuotes.
type QuoteListResult struct {
	Quotes []core.Quote
}

// OrderResult is returned by order lifecycle operations.
type OrderResult struct {
	Order *core.Order
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order
}
