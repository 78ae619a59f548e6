package database

import (
	"errors"
	"fmt"

	"ipamd/internal/domain"
	"ipamd/internal/ipam"
)

var ErrAddressOutsideSubnet = errors.New("address does not belong to the subnet")

// AddressUsed returns the used-predicate for one subnet: a single indexed
// existence query per address. The hosts engine calls it once per
// rendered element and never in bulk.
func AddressUsed(subnetID uint64) ipam.UsedFunc {
	return func(address string) (bool, error) {
		var count int64
		err := DB.Model(&domain.IPAddress{}).
			Where("subnet_id = ? AND ip_address = ?", subnetID, address).
			Count(&count).Error
		return count > 0, err
	}
}

// HostSequenceFor builds the lazily-evaluated host view of a subnet,
// wired to the allocation table of that subnet.
func HostSequenceFor(subnet *domain.Subnet) (*ipam.HostSequence, error) {
	prefix, err := subnet.Prefix()
	if err != nil {
		return nil, err
	}
	space, err := ipam.NewAddressSpace(prefix)
	if err != nil {
		return nil, fmt.Errorf("subnet %s: %w", subnet.CIDR, err)
	}
	return ipam.NewHostSequence(space, AddressUsed(subnet.ID)), nil
}

func CreateIPAddress(ip *domain.IPAddress) error {
	subnet, err := GetSubnet(ip.SubnetID)
	if err != nil {
		return err
	}
	if !subnet.Contains(ip.IPAddress) {
		return fmt.Errorf("%w: %s not in %s", ErrAddressOutsideSubnet, ip.IPAddress, subnet.CIDR)
	}
	return DB.Create(ip).Error
}

func GetIPAddress(id uint64) (*domain.IPAddress, error) {
	var ip domain.IPAddress
	if err := DB.First(&ip, id).Error; err != nil {
		return nil, err
	}
	return &ip, nil
}

func UpdateIPAddress(ip *domain.IPAddress) error {
	subnet, err := GetSubnet(ip.SubnetID)
	if err != nil {
		return err
	}
	if !subnet.Contains(ip.IPAddress) {
		return fmt.Errorf("%w: %s not in %s", ErrAddressOutsideSubnet, ip.IPAddress, subnet.CIDR)
	}
	return DB.Save(ip).Error
}

func DeleteIPAddress(id uint64) error {
	return DB.Delete(&domain.IPAddress{}, id).Error
}

func GetAddressPage(subnetID uint64, page, pageSize int) ([]domain.IPAddress, int64, error) {
	page, pageSize = normalizePaging(page, pageSize)

	query := DB.Model(&domain.IPAddress{}).Where("subnet_id = ?", subnetID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var addresses []domain.IPAddress
	err := DB.Where("subnet_id = ?", subnetID).
		Order("ip_address").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&addresses).Error
	return addresses, total, err
}

func CountAddresses(subnetID uint64) int64 {
	var count int64
	DB.Model(&domain.IPAddress{}).Where("subnet_id = ?", subnetID).Count(&count)
	return count
}

func CountAllAddresses() int64 {
	var count int64
	DB.Model(&domain.IPAddress{}).Count(&count)
	return count
}

// FirstAvailableIP scans the subnet's host sequence for the first address
// with no allocation record. ok is false when the subnet is full.
func FirstAvailableIP(subnet *domain.Subnet) (string, bool, error) {
	seq, err := HostSequenceFor(subnet)
	if err != nil {
		return "", false, err
	}
	return ipam.FirstFree(seq)
}

// RequestIP allocates the first available address of the subnet and
// persists it. A nil result without error means the subnet is exhausted.
func RequestIP(subnet *domain.Subnet, description string) (*domain.IPAddress, error) {
	address, ok, err := FirstAvailableIP(subnet)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	ip := domain.IPAddress{
		IPAddress:   address,
		Description: description,
		SubnetID:    subnet.ID,
	}
	if err := DB.Create(&ip).Error; err != nil {
		return nil, err
	}
	return &ip, nil
}
