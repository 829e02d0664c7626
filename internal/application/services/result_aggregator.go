package services

import "github.com/boicualexandru/scraping-calendis/internal/domain/entities"

// Aggregate keeps the dates with matching slots, in query order
func Aggregate(results []entities.DateResult) entities.AggregatedResult {
	var aggregated entities.AggregatedResult
	for _, r := range results {
		aggregated.Add(r.Date.Label(), r.Slots)
	}
	return aggregated
}
