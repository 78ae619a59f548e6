package domain

import (
	"fmt"
	"net/netip"
	"time"

	"gorm.io/gorm"
)

// Subnet is a managed address block. CIDR is stored in canonical masked
// form so "10.0.0.5/24" and "10.0.0.0/24" cannot coexist as duplicates.
type Subnet struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null;size:100" json:"name"`
	CIDR        string `gorm:"column:cidr;uniqueIndex;not null;size:64" json:"cidr"`
	Description string `gorm:"size:400" json:"description"`

	MasterSubnetID *uint64 `gorm:"index" json:"master_subnet_id"`
	MasterSubnet   *Subnet `gorm:"foreignKey:MasterSubnetID" json:"-"`

	Addresses []IPAddress `gorm:"foreignKey:SubnetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Prefix parses the stored CIDR. Stored values are canonicalized on save,
// so a parse failure here means the row was tampered with outside the app.
func (s *Subnet) Prefix() (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(s.CIDR)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("subnet %d has invalid cidr %q: %w", s.ID, s.CIDR, err)
	}
	return prefix, nil
}

// Contains reports whether the given address text falls inside this
// subnet, across both address families.
func (s *Subnet) Contains(address string) bool {
	prefix, err := s.Prefix()
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	return prefix.Contains(addr.Unmap())
}

func (s *Subnet) BeforeSave(_ *gorm.DB) error {
	prefix, err := netip.ParsePrefix(s.CIDR)
	if err != nil {
		return fmt.Errorf("invalid cidr %q: %w", s.CIDR, err)
	}
	s.CIDR = prefix.Masked().String()
	return nil
}
