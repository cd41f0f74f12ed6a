package protocol

import "slices"

// Pair is one key/value data line.
type Pair struct {
	Key   string
	Value string
}

// Response is the ordered data of one successful round trip.
//
// Pairs holds every data line in arrival order. Segments holds the pairs
// split at each list_OK boundary when the request was an ok-list batch;
// otherwise it is empty.
type Response struct {
	Pairs    []Pair
	Segments [][]Pair
}

// NewResponse builds a response from pairs, copying the slice.
func NewResponse(pairs ...Pair) *Response {
	return &Response{Pairs: slices.Clone(pairs)}
}

// Len returns the number of pairs.
func (r *Response) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Pairs)
}

// Get returns the value of the first pair with the given key.
func (r *Response) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, p := range r.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns the values of every pair with the given key, in order.
func (r *Response) Values(key string) []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, p := range r.Pairs {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Segment returns the i-th list_OK segment as a standalone response.
func (r *Response) Segment(i int) *Response {
	if r == nil || i < 0 || i >= len(r.Segments) {
		return &Response{}
	}
	return &Response{Pairs: slices.Clone(r.Segments[i])}
}
