package domain

import (
	"fmt"
	"net/netip"
	"time"

	"gorm.io/gorm"
)

// IPAddress is one allocated address inside a subnet. The (subnet_id,
// ip_address) pair is unique; the hosts engine relies on a point query
// against exactly that index.
type IPAddress struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	IPAddress   string `gorm:"column:ip_address;not null;size:64;uniqueIndex:idx_subnet_ip,priority:2" json:"ip_address"`
	Description string `gorm:"size:400" json:"description"`

	SubnetID uint64 `gorm:"not null;index;uniqueIndex:idx_subnet_ip,priority:1" json:"subnet_id"`
	Subnet   Subnet `gorm:"foreignKey:SubnetID" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ip *IPAddress) TableName() string {
	return "ip_addresses"
}

func (ip *IPAddress) BeforeSave(_ *gorm.DB) error {
	addr, err := netip.ParseAddr(ip.IPAddress)
	if err != nil {
		return fmt.Errorf("invalid ip address %q: %w", ip.IPAddress, err)
	}
	// canonical text form keeps lookups exact ("FD00::1" vs "fd00::1")
	ip.IPAddress = addr.Unmap().String()
	return nil
}
