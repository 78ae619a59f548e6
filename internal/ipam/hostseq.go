package ipam

import (
	"fmt"
	"math/big"
)

// UsedFunc answers whether a single address is currently allocated. It is
// backed by a point query against the allocation store; implementations
// must never scan the whole subnet.
type UsedFunc func(address string) (bool, error)

// HostEntry is one enumerated host candidate.
type HostEntry struct {
	Address string `json:"address"`
	Used    bool   `json:"used"`
}

// HostSequence is a read-only window [start, stop) over the hosts of an
// AddressSpace. Elements are computed on access: one address derivation
// plus one UsedFunc call, nothing eager. Sequences are cheap values built
// per request and thrown away with the response.
type HostSequence struct {
	space *AddressSpace
	used  UsedFunc
	start *big.Int // inclusive, offset from the first host
	stop  *big.Int // exclusive
}

// NewHostSequence returns the full host range of the space.
func NewHostSequence(space *AddressSpace, used UsedFunc) *HostSequence {
	return &HostSequence{
		space: space,
		used:  used,
		start: new(big.Int),
		stop:  space.HostCount(),
	}
}

func (s *HostSequence) Len() *big.Int {
	return new(big.Int).Sub(s.stop, s.start)
}

// Slice narrows the window to [start, stop) relative to this sequence.
// Bounds are clamped to the current window, and a nil stop means "to the
// end". Offsets accumulate against the underlying space, so slicing a
// slice composes without drift.
func (s *HostSequence) Slice(start, stop *big.Int) *HostSequence {
	length := s.Len()

	if start == nil || start.Sign() < 0 {
		start = new(big.Int)
	}
	if start.Cmp(length) > 0 {
		start = length
	}
	if stop == nil || stop.Cmp(length) > 0 {
		stop = length
	}
	if stop.Cmp(start) < 0 {
		stop = start
	}

	return &HostSequence{
		space: s.space,
		used:  s.used,
		start: new(big.Int).Add(s.start, start),
		stop:  new(big.Int).Add(s.start, stop),
	}
}

// At computes the element at index i within the window. Exactly one
// UsedFunc call is made. Indexes outside [0, Len()) are a caller bug and
// panic.
func (s *HostSequence) At(i *big.Int) (HostEntry, error) {
	addr := s.Address(i)
	used, err := s.used(addr)
	if err != nil {
		return HostEntry{}, fmt.Errorf("host lookup for %s: %w", addr, err)
	}
	return HostEntry{Address: addr, Used: used}, nil
}

// Address returns the address text at index i without consulting the
// used lookup. Cursor links are built from this, so turning a page does
// not cost extra store queries.
func (s *HostSequence) Address(i *big.Int) string {
	if i.Sign() < 0 || i.Cmp(s.Len()) >= 0 {
		panic(fmt.Sprintf("ipam: host index %s out of range [0, %s)", i, s.Len()))
	}
	offset := new(big.Int).Add(s.start, i)
	return s.space.AddressAt(offset).String()
}

// IndexOf decodes an address into an index relative to this window. It is
// how pagination cursors are resumed: ErrBadAddress and ErrOutOfRange
// both mean the cursor cannot be honored.
func (s *HostSequence) IndexOf(address string) (*big.Int, error) {
	index, err := s.space.IndexOf(address)
	if err != nil {
		return nil, err
	}
	if index.Cmp(s.start) < 0 || index.Cmp(s.stop) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrOutOfRange, address)
	}
	return index.Sub(index, s.start), nil
}
