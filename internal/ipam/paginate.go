package ipam

import (
	"math/big"
	"net/url"
)

const (
	DefaultPageLimit   = 256
	DefaultCursorParam = "start"
)

// Paginator cuts a HostSequence into fixed-size pages addressed by an
// opaque cursor: the address text at the page boundary, carried in the
// Param query parameter. There is no total page count and no
// client-settable size; the hosts listing deliberately differs from the
// page-number pagination used by the other list endpoints.
type Paginator struct {
	Limit int
	Param string
}

func NewPaginator(limit int, param string) Paginator {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if param == "" {
		param = DefaultCursorParam
	}
	return Paginator{Limit: limit, Param: param}
}

// Page is the wire shape of one hosts page. Next and Previous are full
// request URLs, or null at the respective end of the sequence.
type Page struct {
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []HostEntry `json:"results"`
}

// Paginate materializes one page of seq. The cursor is taken from
// requestURL; a missing, garbled, or out-of-range cursor restarts at the
// first page rather than failing the request, so stale links stay
// harmless. The previous link drops the cursor parameter entirely when
// stepping back lands on the first page.
func (p Paginator) Paginate(seq *HostSequence, requestURL *url.URL) (Page, error) {
	limit := big.NewInt(int64(p.Limit))
	offset := p.offsetFor(seq, requestURL)
	count := seq.Len()

	end := new(big.Int).Add(offset, limit)
	window := seq.Slice(offset, end)

	// window.Len() <= limit, so it fits an int.
	n := int(window.Len().Int64())
	results := make([]HostEntry, 0, n)
	for i := 0; i < n; i++ {
		entry, err := window.At(big.NewInt(int64(i)))
		if err != nil {
			return Page{}, err
		}
		results = append(results, entry)
	}

	page := Page{Results: results}

	if end.Cmp(count) < 0 {
		next := replaceQueryParam(requestURL, p.Param, seq.Address(end))
		page.Next = &next
	}

	if offset.Sign() > 0 {
		back := new(big.Int).Sub(offset, limit)
		if back.Sign() <= 0 {
			prev := removeQueryParam(requestURL, p.Param)
			page.Previous = &prev
		} else {
			prev := replaceQueryParam(requestURL, p.Param, seq.Address(back))
			page.Previous = &prev
		}
	}

	return page, nil
}

func (p Paginator) offsetFor(seq *HostSequence, requestURL *url.URL) *big.Int {
	cursor := requestURL.Query().Get(p.Param)
	if cursor == "" {
		return new(big.Int)
	}
	index, err := seq.IndexOf(cursor)
	if err != nil {
		return new(big.Int)
	}
	return index
}

func replaceQueryParam(u *url.URL, key, value string) string {
	clone := *u
	query := clone.Query()
	query.Set(key, value)
	clone.RawQuery = query.Encode()
	return clone.String()
}

func removeQueryParam(u *url.URL, key string) string {
	clone := *u
	query := clone.Query()
	query.Del(key)
	clone.RawQuery = query.Encode()
	return clone.String()
}
