package catalog

import (
	"math/rand"
	"sort"
	"strings"

	"coursedeck/internal/domain"
)

// PriceFilter narrows a listing by price band.
type PriceFilter string

const (
	PriceAll  PriceFilter = "all"
	PriceFree PriceFilter = "free"
	PricePaid PriceFilter = "paid"
)

// Sort names a listing order.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
	// SortRating is a placeholder; there is no rating data yet, so it
	// shuffles instead of ordering.
	SortRating Sort = "rating"
)

// Filters is the full listing state. Apply recomputes the visible list from
// scratch, so callers re-run it whenever any input changes.
type Filters struct {
	Search   string
	Category string
	Price    PriceFilter
	Sort     Sort
}

// ParsePriceFilter validates a raw price filter, defaulting to all.
func ParsePriceFilter(raw string) PriceFilter {
	switch PriceFilter(strings.TrimSpace(raw)) {
	case PriceFree:
		return PriceFree
	case PricePaid:
		return PricePaid
	default:
		return PriceAll
	}
}

// ParseSort validates a raw sort name, defaulting to newest.
func ParseSort(raw string) Sort {
	switch Sort(strings.TrimSpace(raw)) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortRating:
		return SortRating
	default:
		return SortNewest
	}
}

// Apply filters and sorts a course list. The input slice is not modified.
func Apply(courses []domain.Course, f Filters) []domain.Course {
	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if !matchesSearch(c, f.Search) {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		switch f.Price {
		case PriceFree:
			if !c.Free() {
				continue
			}
		case PricePaid:
			if c.Free() {
				continue
			}
		}
		out = append(out, c)
	}
	sortCourses(out, f.Sort)
	return out
}

// matchesSearch does a case-insensitive substring match over title,
// description, category and each tag.
func matchesSearch(c domain.Course, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Description), search) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Category), search) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func sortCourses(courses []domain.Course, by Sort) {
	switch by {
	case SortPriceAsc:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Price < courses[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Price > courses[j].Price
		})
	case SortRating:
		rand.Shuffle(len(courses), func(i, j int) {
			courses[i], courses[j] = courses[j], courses[i]
		})
	default:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].CreatedAt.After(courses[j].CreatedAt)
		})
	}
}
