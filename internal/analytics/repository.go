// Package analytics serves the property market data behind the dashboard:
// state and suburb lookups, price charts, and listing search over MongoDB.
package analytics

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"warmhome-backend/internal/config"
)

const searchLimit = 50

// Suburb is one document in the suburbs collection: a price overview row,
// one per suburb.
type Suburb struct {
	ID               string  `bson:"id" json:"id"`
	Name             string  `bson:"name" json:"name"`
	State            string  `bson:"state" json:"state"`
	MedianHousePrice float64 `bson:"medianHousePrice" json:"medianHousePrice"`
	AverageRent      float64 `bson:"averageRent" json:"averageRent"`
	Population       int     `bson:"population" json:"population"`
	GrowthRate       float64 `bson:"growthRate" json:"growthRate"`
}

// Property is one listing. SuburbID is "<STATE>-<suburb>", e.g.
// "VIC-footscray".
type Property struct {
	ID          string    `bson:"id" json:"id"`
	SuburbID    string    `bson:"suburbId" json:"suburbId"`
	Address     string    `bson:"address" json:"address"`
	Price       float64   `bson:"price" json:"price"`
	Bedrooms    int       `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int       `bson:"bathrooms" json:"bathrooms"`
	Type        string    `bson:"type" json:"type"`
	Status      string    `bson:"status" json:"status"`
	Description string    `bson:"description" json:"description"`
	Date        time.Time `bson:"date" json:"date"`
}

// BarPoint is one bar in the suburb price chart.
type BarPoint struct {
	Suburb           string  `bson:"_id" json:"suburb"`
	MedianHousePrice float64 `bson:"medianHousePrice" json:"medianHousePrice"`
	AverageRent      float64 `bson:"averageRent" json:"averageRent"`
}

// TrendPoint is one month of listing prices.
type TrendPoint struct {
	Month    string  `bson:"_id" json:"month"` // "2025-03"
	AvgPrice float64 `bson:"avgPrice" json:"avgPrice"`
	MaxPrice float64 `bson:"maxPrice" json:"maxPrice"`
	MinPrice float64 `bson:"minPrice" json:"minPrice"`
	Listings int     `bson:"listings" json:"listings"`
}

// CityPoint compares states by averaged suburb metrics.
type CityPoint struct {
	State           string  `bson:"_id" json:"state"`
	AvgMedianPrice  float64 `bson:"avgMedianPrice" json:"avgMedianPrice"`
	AvgRent         float64 `bson:"avgRent" json:"avgRent"`
	TotalPopulation int64   `bson:"totalPopulation" json:"totalPopulation"`
	SuburbsCompared int     `bson:"suburbsCompared" json:"suburbsCompared"`
}

// Stats summarizes listing prices for an optional state/suburb scope.
type Stats struct {
	Count    int     `bson:"count" json:"count"`
	AvgPrice float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice float64 `bson:"maxPrice" json:"maxPrice"`
}

// SearchResult carries the matched listings plus the query echo the
// dashboard displays.
type SearchResult struct {
	Items []Property `json:"items"`
	Total int        `json:"total"`
	Query bson.M     `json:"query"`
}

// Connect dials MongoDB and pings it within the configured timeout.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

type Repository struct {
	suburbs    *mongo.Collection
	properties *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		suburbs:    db.Collection("suburbs"),
		properties: db.Collection("properties"),
	}
}

// States lists the distinct state codes present in the suburbs collection.
func (r *Repository) States(ctx context.Context) ([]string, error) {
	raw, err := r.suburbs.Distinct(ctx, "state", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	states := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			states = append(states, s)
		}
	}
	return states, nil
}

// Suburbs returns suburb overviews, optionally scoped to one state,
// sorted by name.
func (r *Repository) Suburbs(ctx context.Context, state string) ([]Suburb, error) {
	filter := bson.M{}
	if state != "" {
		filter["state"] = state
	}

	cursor, err := r.suburbs.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query suburbs: %w", err)
	}

	var suburbs []Suburb
	if err := cursor.All(ctx, &suburbs); err != nil {
		return nil, fmt.Errorf("failed to decode suburbs: %w", err)
	}
	return suburbs, nil
}

// BarChart returns per-suburb median price and average rent for the bar
// chart, most expensive first.
func (r *Repository) BarChart(ctx context.Context, state string) ([]BarPoint, error) {
	match := bson.M{}
	if state != "" {
		match["state"] = state
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":              "$name",
			"medianHousePrice": bson.M{"$avg": "$medianHousePrice"},
			"averageRent":      bson.M{"$avg": "$averageRent"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "medianHousePrice", Value: -1}}}},
	}

	cursor, err := r.suburbs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bar chart: %w", err)
	}

	var points []BarPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode bar chart: %w", err)
	}
	return points, nil
}

// LineGraph buckets listings by month, optionally scoped to one suburb,
// oldest month first.
func (r *Repository) LineGraph(ctx context.Context, suburb string) ([]TrendPoint, error) {
	match := bson.M{}
	if cond, ok := suburbIDFilter(suburb); ok {
		match["suburbId"] = cond
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$date"}},
			"avgPrice": bson.M{"$avg": "$price"},
			"maxPrice": bson.M{"$max": "$price"},
			"minPrice": bson.M{"$min": "$price"},
			"listings": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.properties.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate line graph: %w", err)
	}

	var points []TrendPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode line graph: %w", err)
	}
	return points, nil
}

// CityComparison averages suburb metrics per state.
func (r *Repository) CityComparison(ctx context.Context) ([]CityPoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":             "$state",
			"avgMedianPrice":  bson.M{"$avg": "$medianHousePrice"},
			"avgRent":         bson.M{"$avg": "$averageRent"},
			"totalPopulation": bson.M{"$sum": "$population"},
			"suburbsCompared": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgMedianPrice", Value: -1}}}},
	}

	cursor, err := r.suburbs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate city comparison: %w", err)
	}

	var points []CityPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode city comparison: %w", err)
	}
	return points, nil
}

// Stats summarizes listing prices. State scoping matches the suburbId
// prefix; suburb scoping uses the same rules as Search.
func (r *Repository) Stats(ctx context.Context, state, suburb string) (Stats, error) {
	match := bson.M{}
	switch {
	case suburb != "":
		if cond, ok := suburbIDFilter(suburb); ok {
			match["suburbId"] = cond
		}
	case state != "":
		match["suburbId"] = bson.M{
			"$regex":   "^" + regexp.QuoteMeta(state) + "-",
			"$options": "i",
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"count":    bson.M{"$sum": 1},
			"avgPrice": bson.M{"$avg": "$price"},
			"minPrice": bson.M{"$min": "$price"},
			"maxPrice": bson.M{"$max": "$price"},
		}}},
	}

	cursor, err := r.properties.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	var results []Stats
	if err := cursor.All(ctx, &results); err != nil {
		return Stats{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	if len(results) == 0 {
		return Stats{}, nil
	}
	return results[0], nil
}

// Properties returns listings matching an arbitrary filter document.
func (r *Repository) Properties(ctx context.Context, filter bson.M) ([]Property, error) {
	if filter == nil {
		filter = bson.M{}
	}

	cursor, err := r.properties.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}

	var properties []Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

// Search finds listings in a price range for a region, newest and most
// expensive first, capped at 50 results.
func (r *Repository) Search(ctx context.Context, region string, min, max float64) (SearchResult, error) {
	query := searchQuery(region, min, max)

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "price", Value: -1}}).
		SetLimit(searchLimit)

	cursor, err := r.properties.Find(ctx, query, opts)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search properties: %w", err)
	}

	items := []Property{}
	if err := cursor.All(ctx, &items); err != nil {
		return SearchResult{}, fmt.Errorf("failed to decode search results: %w", err)
	}

	return SearchResult{Items: items, Total: len(items), Query: query}, nil
}

// searchQuery builds the listing filter for Search.
func searchQuery(region string, min, max float64) bson.M {
	query := bson.M{
		"price": bson.M{"$gte": min, "$lte": max},
	}
	if cond, ok := suburbIDFilter(region); ok {
		query["suburbId"] = cond
	}
	return query
}

// suburbIDFilter maps user region input to a suburbId condition. A bare
// suburb name ("footscray") matches any state by suffix; a qualified id
// ("VIC-footscray") must match exactly. Matching is case-insensitive.
func suburbIDFilter(region string) (bson.M, bool) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, false
	}

	pattern := "-" + regexp.QuoteMeta(region) + "$"
	if strings.Contains(region, "-") {
		pattern = "^" + regexp.QuoteMeta(region) + "$"
	}
	return bson.M{"$regex": pattern, "$options": "i"}, true
}
