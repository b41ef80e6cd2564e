package grid

import "github.com/stratolab/strato-go/internal/marketdata"

// tradingState tracks the cash balance and the open position while
// replaying a candle series.
type tradingState struct {
	balance  float64
	position float64
}

func (s *tradingState) enter(price float64) {
	if s.position == 0 {
		s.position = s.balance / price
		s.balance = 0
	}
}

func (s *tradingState) exit(price float64) {
	if s.position > 0 {
		s.balance = s.position * price
		s.position = 0
	}
}

// Report summarizes a backtest run.
type Report struct {
	FinalBalance  float64 `json:"final_balance"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	// MaxDrawdown is the worst peak-to-trough balance decline, as a
	// fraction of the peak.
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Backtest runs the strategy over the candle series and reports trade
// statistics. Each entry is paired with the first exit at or after it,
// with a flat per-trade fee taken on the average of the two prices.
func Backtest(candles []marketdata.Candle, p Params, initialBalance, feeRate float64) Report {
	entries, exits := ManageGrids(candles, p)

	balance := initialBalance
	peak := initialBalance
	report := Report{}

	for i := range candles {
		if !entries[i] {
			continue
		}
		report.TotalTrades++

		entryPrice := candles[i].Close
		exitPrice := entryPrice
		for j := i; j < len(candles); j++ {
			if exits[j] {
				exitPrice = candles[j].Close
				break
			}
		}

		fee := feeRate * (entryPrice + exitPrice) / 2.0
		netProfit := exitPrice - entryPrice - fee
		balance += netProfit

		if netProfit > 0 {
			report.WinningTrades++
		} else {
			report.LosingTrades++
		}

		if balance > peak {
			peak = balance
		}
		if dd := (peak - balance) / peak; dd > report.MaxDrawdown {
			report.MaxDrawdown = dd
		}
	}

	report.FinalBalance = balance
	if report.TotalTrades > 0 {
		report.WinRate = float64(report.WinningTrades) / float64(report.TotalTrades)
	}
	return report
}

// Replay runs the all-in single-position book over the series and returns
// the final balance, liquidating any open position at the last close.
func Replay(candles []marketdata.Candle, entries, exits []bool, initialBalance float64) float64 {
	state := tradingState{balance: initialBalance}
	for i := range candles {
		switch {
		case entries[i]:
			state.enter(candles[i].Close)
		case exits[i]:
			state.exit(candles[i].Close)
		}
	}
	if len(candles) > 0 {
		state.exit(candles[len(candles)-1].Close)
	}
	return state.balance
}
