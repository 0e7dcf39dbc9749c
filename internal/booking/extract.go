package booking

import (
	"math"
	"slices"
	"sync"

	"github.com/user/hotel-scraper/internal/entity"
)

type frame struct {
	offset int
	rows   []entity.HotelRow
}

// Accumulator collects the rows extracted from each page of one day's search.
// Pages may complete in any order; appends are safe for concurrent use.
type Accumulator struct {
	mu     sync.Mutex
	frames []frame
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) append(offset int, rows []entity.HotelRow) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frames = append(a.frames, frame{offset: offset, rows: rows})
}

// Frames is the number of page frames appended so far.
func (a *Accumulator) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.frames)
}

// Rows concatenates every frame, ordered by page offset.
func (a *Accumulator) Rows() []entity.HotelRow {
	a.mu.Lock()
	frames := slices.Clone(a.frames)
	a.mu.Unlock()

	slices.SortStableFunc(frames, func(x, y frame) int {
		return x.offset - y.offset
	})

	var total int
	for _, f := range frames {
		total += len(f.rows)
	}
	if total == 0 {
		return nil
	}
	rows := make([]entity.HotelRow, 0, total)
	for _, f := range frames {
		rows = append(rows, f.rows...)
	}
	return rows
}

// ExtractProperties appends one frame holding a row for every property of a page.
// Entries never get dropped: an unusable entry still yields a row of nulls.
func ExtractProperties(acc *Accumulator, offset int, properties []Node) {
	rows := make([]entity.HotelRow, len(properties))
	for i, p := range properties {
		rows[i] = ExtractProperty(p)
	}
	acc.append(offset, rows)
}

// ExtractProperty pulls the listing fields out of one property entry. Each field
// degrades on its own to nil or NaN.
func ExtractProperty(p Node) entity.HotelRow {
	return entity.HotelRow{
		Hotel:    extractName(p),
		Review:   extractReview(p),
		Price:    extractPrice(p),
		Location: extractLocation(p),
	}
}

func extractName(p Node) *string {
	if name, ok := p.Path("displayName", "text").Str(); ok {
		return &name
	}
	return nil
}

func extractReview(p Node) float64 {
	if score, ok := p.Path("basicPropertyData", "reviewScore", "score").Float(); ok {
		return score
	}
	return math.NaN()
}

func extractPrice(p Node) float64 {
	if amount, ok := p.Get("blocks").Index(0).Path("finalPrice", "amount").Float(); ok {
		return amount
	}
	return math.NaN()
}

func extractLocation(p Node) *string {
	if loc, ok := p.Path("location", "displayLocation").Str(); ok {
		return &loc
	}
	return nil
}
