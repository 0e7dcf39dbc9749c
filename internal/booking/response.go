package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Node is a read-only view over a decoded JSON value. Lookups on a missing key,
// an out-of-range index or a value of the wrong shape yield an empty Node instead
// of failing, so each field can be extracted independently.
type Node struct {
	value  any
	exists bool
}

func newNode(v any) Node {
	return Node{value: v, exists: v != nil}
}

// Exists reports whether the node holds a non-null value.
func (n Node) Exists() bool {
	return n.exists
}

// Get returns the member of an object.
func (n Node) Get(key string) Node {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return Node{}
	}
	return newNode(obj[key])
}

// Path follows a chain of object keys.
func (n Node) Path(keys ...string) Node {
	for _, k := range keys {
		n = n.Get(k)
	}
	return n
}

// Index returns the i-th element of an array.
func (n Node) Index(i int) Node {
	arr, ok := n.value.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Node{}
	}
	return newNode(arr[i])
}

// Items returns the elements of an array, or nil when the node is not an array.
func (n Node) Items() []Node {
	arr, ok := n.value.([]any)
	if !ok {
		return nil
	}
	items := make([]Node, len(arr))
	for i, v := range arr {
		items[i] = newNode(v)
	}
	return items
}

// IsArray reports whether the node holds an array (possibly empty).
func (n Node) IsArray() bool {
	_, ok := n.value.([]any)
	return ok
}

func (n Node) Str() (string, bool) {
	s, ok := n.value.(string)
	return s, ok
}

// Float accepts JSON numbers and numeric strings.
func (n Node) Float() (float64, bool) {
	switch v := n.value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case string:
		f, err := json.Number(strings.TrimSpace(v)).Float64()
		return f, err == nil
	}
	return 0, false
}

// Int accepts JSON numbers holding an integral value.
func (n Node) Int() (int, bool) {
	switch v := n.value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// Response is a decoded search response.
type Response struct {
	root Node
}

// DecodeResponse parses a raw response body. Only malformed JSON is an error;
// every missing field is left for the accessors to report.
func DecodeResponse(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, fmt.Errorf("search response is not a JSON object")
	}
	return &Response{root: newNode(v)}, nil
}

// Search is the `data.searchQueries.search` block.
func (r *Response) Search() Node {
	return r.root.Path("data", "searchQueries", "search")
}

// Errors returns the GraphQL error messages carried by the response.
func (r *Response) Errors() []string {
	var msgs []string
	for _, e := range r.root.Get("errors").Items() {
		if msg, ok := e.Get("message").Str(); ok {
			msgs = append(msgs, msg)
		} else {
			msgs = append(msgs, "unknown error")
		}
	}
	return msgs
}

// HasSearch reports whether the response carries the search block at all.
func (r *Response) HasSearch() bool {
	return r.Search().Exists()
}

// TotalResults is the result count from the pagination block.
func (r *Response) TotalResults() (int, bool) {
	return r.Search().Path("pagination", "nbResultsTotal").Int()
}

// Results returns the raw property entries of the page.
func (r *Response) Results() ([]Node, bool) {
	results := r.Search().Get("results")
	if !results.IsArray() {
		return nil, false
	}
	return results.Items(), true
}

// City is the name of the first breadcrumb whose destination type is CITY.
func (r *Response) City() (string, bool) {
	for _, b := range r.Search().Get("breadcrumbs").Items() {
		if destType, _ := b.Get("destType").Str(); destType != DestTypeCity {
			continue
		}
		return b.Get("name").Str()
	}
	return "", false
}

// Currency is the currency of the first result carrying a price block.
func (r *Response) Currency() (string, bool) {
	results, _ := r.Results()
	for _, result := range results {
		if currency, ok := result.Get("blocks").Index(0).Path("finalPrice", "currency").Str(); ok {
			return currency, true
		}
	}
	return "", false
}

// CheckIn is the echoed check-in date.
func (r *Response) CheckIn() (string, bool) {
	return r.Search().Path("flexibleDatesConfig", "dateRangeCalendar", "checkin").Index(0).Str()
}

// CheckOut is the echoed check-out date.
func (r *Response) CheckOut() (string, bool) {
	return r.Search().Path("flexibleDatesConfig", "dateRangeCalendar", "checkout").Index(0).Str()
}

// Adults is the echoed adult count.
func (r *Response) Adults() (int, bool) {
	return r.Search().Path("searchMeta", "nbAdults").Int()
}

// Children is the echoed child count.
func (r *Response) Children() (int, bool) {
	return r.Search().Path("searchMeta", "nbChildren").Int()
}

// Rooms is the echoed room count.
func (r *Response) Rooms() (int, bool) {
	return r.Search().Path("searchMeta", "nbRooms").Int()
}

// AppliedFilters lists the url ids of the filters the server applied.
func (r *Response) AppliedFilters() []string {
	var ids []string
	for _, f := range r.Search().Get("appliedFilterOptions").Items() {
		if id, ok := f.Get("urlId").Str(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
