// Package entity defines the domain models for the prices feature.
package entity

// PricePoint represents one day of OHLCV data for an instrument.
// Date is a calendar date in "2006-01-02" form; (Code, Date) is the
// identity of a row and a later write for the same pair fully replaces it.
type PricePoint struct {
	Code         string  // Instrument code (e.g. "600000")
	Date         string  // Trading date, "2006-01-02"
	Open         float64 // Opening price
	High         float64 // Highest price of the day
	Low          float64 // Lowest price of the day
	Close        float64 // Closing price
	Volume       float64 // Trading volume
	Amount       float64 // Trading amount, 0 when the provider omits it
	PctChange    float64 // Daily percentage change, 0 when omitted
	TurnoverRate float64 // Turnover rate, 0 when omitted
}

// DateLayout is the canonical layout for PricePoint.Date and watermarks.
const DateLayout = "2006-01-02"
