package catalog

import (
	"fmt"
	"strings"
)

// AdKind distinguishes the two listing types served by the catalog.
type AdKind string

const (
	// AdKindCar is a vehicle listing.
	AdKindCar AdKind = "car"

	// AdKindPlate is a license plate listing.
	AdKindPlate AdKind = "plate"
)

// Valid reports whether k is a known listing type.
func (k AdKind) Valid() bool {
	return k == AdKindCar || k == AdKindPlate
}

// Endpoint returns the list endpoint path for the kind.
func (k AdKind) Endpoint() string {
	if k == AdKindPlate {
		return "/api/plates"
	}
	return "/api/cars"
}

// AdRef identifies one ad across both listing types.
// It is the identity used for favorites membership and list dedup.
type AdRef struct {
	Kind AdKind
	ID   int64
}

// String formats the ref for log fields.
func (r AdRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// AdSummary is the minimal listing record shown in catalog lists.
// Title holds "brand model" for cars and the plate number for plates.
type AdSummary struct {
	ID        int64  `json:"id"`
	Kind      AdKind `json:"kind"`
	Title     string `json:"title"`
	Price     int    `json:"price"`
	City      string `json:"city"`
	Photo     string `json:"photo,omitempty"`
	ViewCount int    `json:"view_count"`
}

// Ref returns the ad's identity.
func (a AdSummary) Ref() AdRef {
	return AdRef{Kind: a.Kind, ID: a.ID}
}

// QueryResult is one page of a catalog list response.
type QueryResult struct {
	Items []AdSummary
	Total int
}

// wireAd covers the union of fields the two list endpoints emit per item.
type wireAd struct {
	ID          int64  `json:"id"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	PlateNumber string `json:"plate_number"`
	Price       int    `json:"price"`
	City        string `json:"city"`
	Photo       string `json:"photo"`
	ViewCount   int    `json:"view_count"`
}

func (w wireAd) toSummary(kind AdKind) AdSummary {
	title := w.PlateNumber
	if kind == AdKindCar {
		title = strings.TrimSpace(w.Brand + " " + w.Model)
	}
	return AdSummary{
		ID:        w.ID,
		Kind:      kind,
		Title:     title,
		Price:     w.Price,
		City:      w.City,
		Photo:     w.Photo,
		ViewCount: w.ViewCount,
	}
}
