package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"publimar/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool      *pgxpool.Pool
	clients   core.ClientService
	catalog   core.CatalogService
	quotes    core.QuoteService
	orders    core.OrderService
	numbering core.NumberingService
	reporting core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	clients core.ClientService,
	catalog core.CatalogService,
	quotes core.QuoteService,
	orders core.OrderService,
	numbering core.NumberingService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		pool:      pool,
		clients:   clients,
		catalog:   catalog,
		quotes:    quotes,
		orders:    orders,
		numbering: numbering,
		reporting: reporting,
	}
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.clients.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) GetClient(ctx context.Context, clientID int) (*ClientResult, error) {
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) CreateClient(ctx context.Context, req ClientRequest) (*ClientResult, error) {
	client, err := s.clients.CreateClient(ctx, req.Name, req.Email, req.Phone, req.Address, req.TaxID)
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) UpdateClient(ctx context.Context, clientID int, req ClientRequest) (*ClientResult, error) {
	client, err := s.clients.UpdateClient(ctx, clientID, req.Name, req.Email, req.Phone, req.Address, req.TaxID)
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) DeactivateClient(ctx context.Context, clientID int) error {
	return s.clients.DeactivateClient(ctx, clientID)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, ref string) (*ProductResult, error) {
	var (
		product *core.Product
		err     error
	)
	if id, convErr := strconv.Atoi(ref); convErr == nil {
		product, err = s.catalog.GetProduct(ctx, id)
	} else {
		product, err = s.catalog.GetProductByCode(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	variants := make([]core.VariantInput, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = core.VariantInput{Size: v.Size, SKU: v.SKU, Price: v.Price, Stock: v.Stock}
	}
	product, err := s.catalog.CreateProduct(ctx, req.Code, req.Name, req.Description, req.BasePrice, variants)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) AddVariant(ctx context.Context, productID int, req VariantRequest) (*core.ProductVariant, error) {
	return s.catalog.AddVariant(ctx, productID, core.VariantInput{
		Size: req.Size, SKU: req.SKU, Price: req.Price, Stock: req.Stock,
	})
}

func (s *appService) DeactivateProduct(ctx context.Context, productID int) error {
	return s.catalog.DeactivateProduct(ctx, productID)
}

func (s *appService) ReceiveStock(ctx context.Context, variantID, qty int) (*core.ProductVariant, error) {
	return s.catalog.ReceiveStock(ctx, variantID, qty)
}

// ── Quotes ────────────────────────────────────────────────────────────────────

func (s *appService) ListQuotes(ctx context.Context, status *string) (*QuoteListResult, error) {
	quotes, err := s.quotes.GetQuotes(ctx, status)
	if err != nil {
		return nil, err
	}
	return &QuoteListResult{Quotes: quotes}, nil
}

func (s *appService) GetQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	quote, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

func (s *appService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResult, error) {
	quote, err := s.quotes.CreateQuote(ctx, core.CreateQuoteInput{
		ClientID:       req.ClientID,
		TaxRatePercent: req.TaxRatePercent,
		ValidUntil:     req.ValidUntil,
		Items:          toItemInputs(req.Lines),
	}, s.numbering)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

func (s *appService) AddQuoteItem(ctx context.Context, ref string, line QuoteLineRequest) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.AddQuoteItem(ctx, id, core.QuoteItemInput{
			ProductID:       line.ProductID,
			VariantID:       line.VariantID,
			Quantity:        line.Quantity,
			DiscountPercent: line.DiscountPercent,
			Notes:           line.Notes,
		})
	})
}

func (s *appService) UpdateQuoteItem(ctx context.Context, ref, itemID string, patch core.ItemPatch) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.UpdateQuoteItem(ctx, id, itemID, patch)
	})
}

func (s *appService) RemoveQuoteItem(ctx context.Context, ref, itemID string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.RemoveQuoteItem(ctx, id, itemID)
	})
}

func (s *appService) SetQuoteTaxRate(ctx context.Context, ref, taxRatePercent string) (*QuoteResult, error) {
	rate, err := decimal.NewFromString(taxRatePercent)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tax rate %q", core.ErrInvalidInput, taxRatePercent)
	}
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.SetTaxRate(ctx, id, rate)
	})
}

func (s *appService) SendQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.MarkQuoteSent(ctx, id)
	})
}

func (s *appService) ConfirmQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.ConfirmQuote(ctx, id)
	})
}

func (s *appService) RejectQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.RejectQuote(ctx, id)
	})
}

func (s *appService) ResetQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.ResetQuoteToDraft(ctx, id)
	})
}

func (s *appService) ClientConfirmQuote(ctx context.Context, ref, comment string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.ClientConfirmQuote(ctx, id, comment)
	})
}

func (s *appService) ClientRejectQuote(ctx context.Context, ref, comment string) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.ClientRejectQuote(ctx, id, comment)
	})
}

func (s *appService) AddQuoteComment(ctx context.Context, ref, author, text string, isInternal bool) (*QuoteResult, error) {
	return s.quoteOp(ctx, ref, func(id int) (*core.Quote, error) {
		return s.quotes.AddQuoteComment(ctx, id, author, text, isInternal)
	})
}

// ── Orders ────────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context, status *string) (*OrderListResult, error) {
	orders, err := s.orders.GetOrders(ctx, status)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, ref string) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	order, err := s.orders.CreateOrder(ctx, core.CreateOrderInput{
		ClientID:          req.ClientID,
		TaxRatePercent:    req.TaxRatePercent,
		DownPayment:       req.DownPayment,
		EstimatedDelivery: req.EstimatedDelivery,
		Items:             toItemInputs(req.Lines),
	}, s.numbering, s.catalog)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) CreateOrderFromQuote(ctx context.Context, req OrderFromQuoteRequest) (*OrderResult, error) {
	quote, err := s.resolveQuote(ctx, req.QuoteRef)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.CreateOrderFromQuote(ctx, quote.ID, req.DownPayment, req.EstimatedDelivery,
		s.numbering, s.catalog, s.quotes)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) CompleteOrder(ctx context.Context, ref string) (*OrderResult, error) {
	return s.orderOp(ctx, ref, func(id int) (*core.Order, error) {
		return s.orders.CompleteOrder(ctx, id)
	})
}

func (s *appService) CancelOrder(ctx context.Context, ref string) (*OrderResult, error) {
	return s.orderOp(ctx, ref, func(id int) (*core.Order, error) {
		return s.orders.CancelOrder(ctx, id)
	})
}

func (s *appService) RecordPayment(ctx context.Context, ref string, req PaymentRequest) (*OrderResult, error) {
	return s.orderOp(ctx, ref, func(id int) (*core.Order, error) {
		return s.orders.RecordOrderPayment(ctx, id, req.Amount, req.Method, req.Bank, req.Notes)
	})
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *appService) GetOutstandingOrders(ctx context.Context) ([]core.OutstandingOrder, error) {
	return s.reporting.GetOutstandingOrders(ctx)
}

func (s *appService) GetExpiredQuotes(ctx context.Context) ([]core.ExpiredQuote, error) {
	return s.reporting.GetExpiredQuotes(ctx, time.Now())
}

func (s *appService) GetSalesSummary(ctx context.Context, year int) (*core.SalesSummary, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	return s.reporting.GetSalesSummary(ctx, year)
}

// ── private helpers ───────────────────────────────────────────────────────────

// resolveQuote looks up a quote by numeric ID or PRE number.
func (s *appService) resolveQuote(ctx context.Context, ref string) (*core.Quote, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.quotes.GetQuote(ctx, id)
	}
	return s.quotes.GetQuoteByNumber(ctx, ref)
}

// resolveOrder looks up an order by numeric ID or PED number.
func (s *appService) resolveOrder(ctx context.Context, ref string) (*core.Order, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.orders.GetOrder(ctx, id)
	}
	return s.orders.GetOrderByNumber(ctx, ref)
}

// quoteOp resolves the ref and applies fn, wrapping the result.
func (s *appService) quoteOp(ctx context.Context, ref string, fn func(id int) (*core.Quote, error)) (*QuoteResult, error) {
	quote, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	quote, err = fn(quote.ID)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Quote: quote}, nil
}

// orderOp resolves the ref and applies fn, wrapping the result.
func (s *appService) orderOp(ctx context.Context, ref string, fn func(id int) (*core.Order, error)) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	order, err = fn(order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func toItemInputs(lines []QuoteLineRequest) []core.QuoteItemInput {
	items := make([]core.QuoteItemInput, len(lines))
	for i, l := range lines {
		items[i] = core.QuoteItemInput{
			ProductID:       l.ProductID,
			VariantID:       l.VariantID,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			Notes:           l.Notes,
		}
	}
	return items
}
