package polymarket

import (
	"encoding/json"
	"strconv"
	"time"
)

// Snapshot is one complete fetch result for all tracked wallets at a point
// in time. Each new snapshot fully replaces the previous rendered view.
type Snapshot struct {
	RequestedAt time.Time      `json:"requested_at"`
	Results     []WalletResult `json:"results"`
}

// WalletResult holds one wallet's positions and open orders, or the error
// that prevented its lookup. Error and positions/orders are mutually
// exclusive: an errored wallet carries no data.
type WalletResult struct {
	Address    string     `json:"address"`
	Error      string     `json:"error,omitempty"`
	Positions  []Position `json:"positions,omitempty"`
	OpenOrders []Order    `json:"open_orders,omitempty"`

	// Untouched upstream records, exposed by the raw-payload disclosure.
	RawPositions []json.RawMessage `json:"raw_positions,omitempty"`
	RawOrders    []json.RawMessage `json:"raw_orders,omitempty"`
}

// Position is a wallet's net holding in one market outcome. Numeric fields
// are pointers: absent values render as an em-dash, never as zero.
type Position struct {
	Slug      string   `json:"slug"`
	Question  string   `json:"question"`
	Outcome   string   `json:"outcome"`
	Size      *float64 `json:"size"`
	AvgPrice  *float64 `json:"avg_price"`
	LastPrice *float64 `json:"last_price"`
	Value     *float64 `json:"value"`
}

// Order is one resting CLOB order.
type Order struct {
	Slug          string    `json:"slug"`
	Question      string    `json:"question"`
	Outcome       string    `json:"outcome"`
	Side          string    `json:"side"`
	OrderType     string    `json:"order_type"`
	Price         *float64  `json:"price"`
	Size          *float64  `json:"size"`
	SizeRemaining *float64  `json:"size_remaining"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ── upstream wire shapes ────────────────────────────────────

// dataAPIPosition is the data-api /positions record.
type dataAPIPosition struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Outcome      string   `json:"outcome"`
	Size         *float64 `json:"size"`
	AvgPrice     *float64 `json:"avgPrice"`
	CurPrice     *float64 `json:"curPrice"`
	CurrentValue *float64 `json:"currentValue"`
}

func (p dataAPIPosition) toPosition() Position {
	return Position{
		Slug:      p.Slug,
		Question:  p.Title,
		Outcome:   p.Outcome,
		Size:      p.Size,
		AvgPrice:  p.AvgPrice,
		LastPrice: p.CurPrice,
		Value:     p.CurrentValue,
	}
}

// clobOrder is the CLOB /data/orders record. Numeric fields arrive as
// strings on the wire.
type clobOrder struct {
	Slug         string `json:"market_slug"`
	Question     string `json:"question"`
	Outcome      string `json:"outcome"`
	Side         string `json:"side"`
	OrderType    string `json:"order_type"`
	Price        string `json:"price"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Status       string `json:"status"`
	CreatedAt    int64  `json:"created_at"`
}

func (o clobOrder) toOrder() Order {
	price := parseNum(o.Price)
	size := parseNum(o.OriginalSize)
	matched := parseNum(o.SizeMatched)

	var remaining *float64
	if size != nil && matched != nil {
		r := *size - *matched
		remaining = &r
	}

	return Order{
		Slug:          o.Slug,
		Question:      o.Question,
		Outcome:       o.Outcome,
		Side:          o.Side,
		OrderType:     o.OrderType,
		Price:         price,
		Size:          size,
		SizeRemaining: remaining,
		Status:        o.Status,
		CreatedAt:     time.Unix(o.CreatedAt, 0).UTC(),
	}
}

func parseNum(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
