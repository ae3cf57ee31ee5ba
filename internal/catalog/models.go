package catalog

import (
	"time"

	"clam-browse/internal/browse"
)

// Product represents a product in the catalog
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	PrimaryImageURL string    `json:"primary_image_url"`
	Images          []string  `json:"images"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	SKU             string    `json:"sku"`
	StockCount      int       `json:"stock_count"`
	Tags            []string  `json:"tags"`
	Rating          *float64  `json:"rating,omitempty"`
	ReviewCount     int       `json:"review_count"`
	Popularity      *float64  `json:"popularity,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Browse projects the row onto the fields the browse engine filters and sorts on.
// Unrated products count as rating 0.
func (p Product) Browse() browse.Product {
	var rating float64
	if p.Rating != nil {
		rating = *p.Rating
	}
	return browse.Product{
		ID:         browse.ProductID(p.ID),
		Name:       p.Name,
		Category:   p.Category,
		Brand:      p.Brand,
		Price:      p.Price,
		Rating:     rating,
		Popularity: p.Popularity,
	}
}

func toBrowse(products []Product) []browse.Product {
	out := make([]browse.Product, len(products))
	for i, p := range products {
		out[i] = p.Browse()
	}
	return out
}

// ListQuery narrows ListProducts and CountProducts. Zero Limit means no limit.
type ListQuery struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}

// ProductListResponse wraps a list of products with pagination info
type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit,omitempty"`
	Offset   int       `json:"offset,omitempty"`
}

// BrowseResponse is one page of browse results plus the facets of the fetched catalog
type BrowseResponse struct {
	browse.Result
	Sort   string        `json:"sort"`
	Facets browse.Facets `json:"facets"`
}

// PrefsPayload is the persisted browsing state of one session
type PrefsPayload struct {
	Filters browse.FilterCriteria `json:"filters"`
	Sort    string                `json:"sort"`
}

// CreateProductRequest represents the payload for creating a product
type CreateProductRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	PrimaryImageURL string   `json:"primary_image_url"`
	Images          []string `json:"images"`
	Category        string   `json:"category"`
	Brand           string   `json:"brand"`
	SKU             string   `json:"sku"`
	StockCount      int      `json:"stock_count"`
	Tags            []string `json:"tags"`
	Rating          *float64 `json:"rating,omitempty"`
	Popularity      *float64 `json:"popularity,omitempty"`
}

// UpdateProductRequest represents the payload for updating a product
type UpdateProductRequest struct {
	Name            *string   `json:"name,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Price           *float64  `json:"price,omitempty"`
	PrimaryImageURL *string   `json:"primary_image_url,omitempty"`
	Images          *[]string `json:"images,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Brand           *string   `json:"brand,omitempty"`
	SKU             *string   `json:"sku,omitempty"`
	StockCount      *int      `json:"stock_count,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	Rating          *float64  `json:"rating,omitempty"`
	Popularity      *float64  `json:"popularity,omitempty"`
}
