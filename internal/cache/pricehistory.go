package cache

import "context"

// PricePoint is one month of a make/model price series.
type PricePoint struct {
	Date  string `json:"date"`
	Price int    `json:"price"`
}

func priceHistoryID(carMake, carModel string) string { return carMake + ":" + carModel }

// GetPriceHistory returns the cached series for a make/model, or nil on miss.
func (s *Store) GetPriceHistory(ctx context.Context, carMake, carModel string) []PricePoint {
	var series []PricePoint
	if !s.Get(ctx, PrefixPriceHistory, priceHistoryID(carMake, carModel), &series) {
		return nil
	}
	return series
}

func (s *Store) SetPriceHistory(ctx context.Context, carMake, carModel string, series []PricePoint) {
	s.Set(ctx, PrefixPriceHistory, priceHistoryID(carMake, carModel), series, s.priceHistoryTTL)
}
