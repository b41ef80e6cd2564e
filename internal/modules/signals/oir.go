// Package signals implements order-book imbalance signals (volume order
// imbalance, order imbalance ratio, mid-price basis) and a small trading
// state machine driven by them.
package signals

import (
	"github.com/rs/zerolog"
)

// Level is one price level of an order book side.
type Level struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// OrderBook is a snapshot of both sides of the book.
type OrderBook struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// BestBid returns the price of the first bid level, or zero when empty.
func (b OrderBook) BestBid() float64 {
	if len(b.Bids) == 0 {
		return 0
	}
	return b.Bids[0].Price
}

// BestAsk returns the price of the first ask level, or zero when empty.
func (b OrderBook) BestAsk() float64 {
	if len(b.Asks) == 0 {
		return 0
	}
	return b.Asks[0].Price
}

// VOI is the volume order imbalance: total bid volume minus total ask
// volume. The side volumes are returned alongside for reuse.
func VOI(book OrderBook) (voi, bidVolume, askVolume float64) {
	for _, l := range book.Bids {
		bidVolume += l.Amount
	}
	for _, l := range book.Asks {
		askVolume += l.Amount
	}
	return bidVolume - askVolume, bidVolume, askVolume
}

// OIR is the order imbalance ratio, the VOI normalized to [-1, 1].
func OIR(bidVolume, askVolume float64) float64 {
	total := bidVolume + askVolume
	if total == 0 {
		return 0
	}
	return (bidVolume - askVolume) / total
}

// MPB is the mid-price basis: how far the last trade printed from the
// current mid.
func MPB(lastPrice, midPrice float64) float64 {
	return lastPrice - midPrice
}

// Spread is the bid-ask spread as a percentage of the bid.
func Spread(bid, ask float64) float64 {
	return (ask - bid) / bid * 100.0
}

// ShouldTrade gates signal evaluation: the spread must be tight enough
// and the book must actually be imbalanced.
func ShouldTrade(spread, voi, spreadThreshold float64) bool {
	return spread <= spreadThreshold && voi != 0
}

// RelativeDepths sizes quote distances from the mid price, skewed by the
// current inventory. A long position widens the bid depth and tightens
// the ask depth so the book leans toward reducing the position; a short
// position does the opposite.
func RelativeDepths(relativeHalfSpread, skew, position, orderQty float64) (bidDepth, askDepth float64) {
	normalizedPosition := position / orderQty
	bidDepth = relativeHalfSpread + skew*normalizedPosition
	askDepth = relativeHalfSpread - skew*normalizedPosition
	return bidDepth, askDepth
}

// Config holds the signal thresholds and trade sizing.
type Config struct {
	TradeSize       float64 `json:"trade_size"`
	SpreadThreshold float64 `json:"spread_threshold"`
	// FeeRate is the proportional transaction cost per fill.
	FeeRate          float64 `json:"fee_rate"`
	BuyOIRThreshold  float64 `json:"buy_oir_threshold"`
	SellOIRThreshold float64 `json:"sell_oir_threshold"`
	BuyMPBThreshold  float64 `json:"buy_mpb_threshold"`
	SellMPBThreshold float64 `json:"sell_mpb_threshold"`
}

// DefaultConfig returns the thresholds the strategy was tuned with.
func DefaultConfig() Config {
	return Config{
		TradeSize:        0.001,
		SpreadThreshold:  0.05,
		FeeRate:          0.005,
		BuyOIRThreshold:  0.1,
		SellOIRThreshold: -0.1,
		BuyMPBThreshold:  0.1,
		SellMPBThreshold: -0.1,
	}
}

// Trader holds cash and an entry-price stack for one symbol.
type Trader struct {
	cfg       Config
	log       zerolog.Logger
	symbol    string
	cash      float64
	positions []float64
}

// NewTrader creates a trading state with the given starting cash.
func NewTrader(cfg Config, symbol string, cash float64, log zerolog.Logger) *Trader {
	return &Trader{
		cfg:    cfg,
		log:    log.With().Str("component", "signals").Str("symbol", symbol).Logger(),
		symbol: symbol,
		cash:   cash,
	}
}

// Cash returns the current cash balance.
func (t *Trader) Cash() float64 { return t.cash }

// OpenPositions returns the number of open entries.
func (t *Trader) OpenPositions() int { return len(t.positions) }

// Buy enters one unit of TradeSize at the given price.
func (t *Trader) Buy(price float64) {
	cost := t.cfg.TradeSize * price * t.cfg.FeeRate
	t.positions = append(t.positions, price)
	t.cash -= price*t.cfg.TradeSize + cost
	t.log.Debug().
		Float64("price", price).
		Float64("size", t.cfg.TradeSize).
		Float64("fee", cost).
		Msg("buy executed")
}

// Sell exits the most recent entry at the given price. A sell with no
// open position is a no-op.
func (t *Trader) Sell(price float64) {
	if len(t.positions) == 0 {
		return
	}
	cost := t.cfg.TradeSize * price * t.cfg.FeeRate
	t.positions = t.positions[:len(t.positions)-1]
	t.cash += price*t.cfg.TradeSize - cost
	t.log.Debug().
		Float64("price", price).
		Float64("size", t.cfg.TradeSize).
		Float64("fee", cost).
		Msg("sell executed")
}

// CheckBuy enters at the bid when every buy signal agrees.
func (t *Trader) CheckBuy(bid, voi, oir, mpb float64) {
	if voi > 0 && oir > t.cfg.BuyOIRThreshold && mpb > t.cfg.BuyMPBThreshold {
		t.log.Info().
			Float64("voi", voi).
			Float64("oir", oir).
			Float64("mpb", mpb).
			Float64("bid", bid).
			Msg("buy conditions met")
		t.Buy(bid)
	}
}

// CheckSell exits at the ask when every sell signal agrees and there is
// a position to exit.
func (t *Trader) CheckSell(ask, voi, oir, mpb float64) {
	if voi < 0 && oir < t.cfg.SellOIRThreshold && mpb < t.cfg.SellMPBThreshold && len(t.positions) > 0 {
		t.log.Info().
			Float64("voi", voi).
			Float64("oir", oir).
			Float64("mpb", mpb).
			Float64("ask", ask).
			Msg("sell conditions met")
		t.Sell(ask)
	}
}

// Step evaluates one book snapshot end to end: gate on spread and
// imbalance, then run the buy and sell checks.
func (t *Trader) Step(book OrderBook, lastPrice float64) {
	bid, ask := book.BestBid(), book.BestAsk()
	if bid <= 0 || ask <= 0 {
		return
	}

	voi, bidVol, askVol := VOI(book)
	spread := Spread(bid, ask)
	if !ShouldTrade(spread, voi, t.cfg.SpreadThreshold) {
		return
	}

	oir := OIR(bidVol, askVol)
	mpb := MPB(lastPrice, (bid+ask)/2)
	t.CheckBuy(bid, voi, oir, mpb)
	t.CheckSell(ask, voi, oir, mpb)
}

// PortfolioValue marks the open positions at the given bid.
func (t *Trader) PortfolioValue(bid float64) float64 {
	return t.cash + float64(len(t.positions))*t.cfg.TradeSize*bid
}
