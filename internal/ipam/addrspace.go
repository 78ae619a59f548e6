// Package ipam implements the host-enumeration engine: lazily indexed
// views over a subnet's candidate addresses and the address-keyed cursor
// pagination built on top of them. Subnets are never materialized; every
// operation is integer arithmetic over the address value, so a /8 IPv4
// and a /48 IPv6 subnet cost the same per page.
package ipam

import (
	"errors"
	"fmt"
	"math/big"
	"net/netip"
)

// Family selects the addressing scheme of an AddressSpace. It is fixed at
// construction; host-count semantics branch on it exactly once, here.
type Family int

const (
	FamilyV4 Family = iota
	FamilyV6
)

func (f Family) String() string {
	if f == FamilyV4 {
		return "IPv4"
	}
	return "IPv6"
}

var (
	// ErrBadAddress reports text that does not parse as an address of the
	// space's family.
	ErrBadAddress = errors.New("not a valid address for this subnet")
	// ErrOutOfRange reports an address that parses fine but falls outside
	// the enumerable host range.
	ErrOutOfRange = errors.New("address outside the host range")
)

var one = big.NewInt(1)

// AddressSpace holds a subnet's boundaries as integers and converts
// between host offsets and address text. Immutable after construction.
type AddressSpace struct {
	family    Family
	network   *big.Int
	broadcast *big.Int
}

// NewAddressSpace derives the space from a CIDR prefix. The prefix is
// canonicalized first, so "10.0.0.5/30" and "10.0.0.4/30" build the same
// space. Prefixes with a single address (/32, /128) are rejected: they
// have no network/broadcast distinction and nothing to enumerate.
func NewAddressSpace(prefix netip.Prefix) (*AddressSpace, error) {
	if !prefix.IsValid() {
		return nil, fmt.Errorf("invalid prefix %q", prefix)
	}

	masked := prefix.Masked()

	family := FamilyV6
	bits := 128
	if masked.Addr().Unmap().Is4() {
		family = FamilyV4
		bits = 32
	}

	network := addrToInt(masked.Addr())
	size := new(big.Int).Lsh(one, uint(bits-masked.Bits()))
	broadcast := new(big.Int).Add(network, size)
	broadcast.Sub(broadcast, one)

	if network.Cmp(broadcast) >= 0 {
		return nil, fmt.Errorf("prefix %s spans a single address, nothing to enumerate", masked)
	}

	return &AddressSpace{
		family:    family,
		network:   network,
		broadcast: broadcast,
	}, nil
}

func (s *AddressSpace) Family() Family { return s.family }

// Network returns the subnet's network address.
func (s *AddressSpace) Network() netip.Addr {
	return intToAddr(s.network, s.family)
}

// Broadcast returns the highest address of the subnet. For IPv6 this is
// just the last address; the family carries no broadcast semantics.
func (s *AddressSpace) Broadcast() netip.Addr {
	return intToAddr(s.broadcast, s.family)
}

// HostCount returns the number of enumerable host addresses. The network
// address is always excluded; the broadcast address only for IPv4, which
// is the one family that defines one.
func (s *AddressSpace) HostCount() *big.Int {
	count := new(big.Int).Sub(s.broadcast, s.network)
	if s.family == FamilyV4 {
		count.Sub(count, one)
	}
	return count
}

// AddressAt returns the host address at the given offset, counting from
// the first address after the network address. Offsets outside
// [0, HostCount()) are a caller bug and panic.
func (s *AddressSpace) AddressAt(offset *big.Int) netip.Addr {
	if offset.Sign() < 0 || offset.Cmp(s.HostCount()) >= 0 {
		panic(fmt.Sprintf("ipam: host offset %s out of range [0, %s)", offset, s.HostCount()))
	}

	value := new(big.Int).Add(s.network, one)
	value.Add(value, offset)
	return intToAddr(value, s.family)
}

// IndexOf is the inverse of AddressAt. It returns ErrBadAddress when the
// text does not parse as an address of this space's family and
// ErrOutOfRange when the address sits outside the host range (including
// the network and broadcast addresses themselves).
func (s *AddressSpace) IndexOf(address string) (*big.Int, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadAddress, address)
	}
	if familyOf(addr) != s.family {
		return nil, fmt.Errorf("%w: %q is not %s", ErrBadAddress, address, s.family)
	}

	index := addrToInt(addr)
	index.Sub(index, s.network)
	index.Sub(index, one)

	if index.Sign() < 0 || index.Cmp(s.HostCount()) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrOutOfRange, address)
	}
	return index, nil
}

func familyOf(addr netip.Addr) Family {
	if addr.Unmap().Is4() {
		return FamilyV4
	}
	return FamilyV6
}

func addrToInt(addr netip.Addr) *big.Int {
	addr = addr.Unmap()
	if addr.Is4() {
		bytes := addr.As4()
		return new(big.Int).SetBytes(bytes[:])
	}
	bytes := addr.As16()
	return new(big.Int).SetBytes(bytes[:])
}

func intToAddr(value *big.Int, family Family) netip.Addr {
	if family == FamilyV4 {
		var out [4]byte
		value.FillBytes(out[:])
		return netip.AddrFrom4(out)
	}
	var out [16]byte
	value.FillBytes(out[:])
	return netip.AddrFrom16(out)
}
