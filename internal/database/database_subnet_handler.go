package database

import (
	"errors"
	"fmt"
	"net/netip"

	"ipamd/internal/config"
	"ipamd/internal/domain"
)

var (
	ErrSubnetOverlap   = errors.New("subnet overlaps an existing subnet")
	ErrOutsideMaster   = errors.New("subnet is not contained in its master subnet")
	ErrMasterNotFound  = errors.New("master subnet does not exist")
	ErrSubnetHasMaster = errors.New("subnet cannot be its own master")
)

func CreateSubnet(subnet *domain.Subnet) error {
	if err := validateSubnetPlacement(subnet); err != nil {
		return err
	}
	return DB.Create(subnet).Error
}

func UpdateSubnet(subnet *domain.Subnet) error {
	if subnet.MasterSubnetID != nil && *subnet.MasterSubnetID == subnet.ID {
		return ErrSubnetHasMaster
	}
	if err := validateSubnetPlacement(subnet); err != nil {
		return err
	}
	return DB.Save(subnet).Error
}

func GetSubnet(id uint64) (*domain.Subnet, error) {
	var subnet domain.Subnet
	if err := DB.First(&subnet, id).Error; err != nil {
		return nil, err
	}
	return &subnet, nil
}

func GetSubnetPage(page, pageSize int) ([]domain.Subnet, int64, error) {
	page, pageSize = normalizePaging(page, pageSize)

	var total int64
	if err := DB.Model(&domain.Subnet{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// cidr text sorts lexically ("10..." after "2..."), so the paged
	// list keeps creation order instead
	var subnets []domain.Subnet
	err := DB.Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&subnets).Error
	return subnets, total, err
}

func GetAllSubnets() ([]domain.Subnet, error) {
	var subnets []domain.Subnet
	err := DB.Order("id").Find(&subnets).Error
	return subnets, err
}

func GetSubnetByCIDR(cidr string) (*domain.Subnet, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid cidr %q: %w", cidr, err)
	}

	var subnet domain.Subnet
	if err := DB.Where("cidr = ?", prefix.Masked().String()).First(&subnet).Error; err != nil {
		return nil, err
	}
	return &subnet, nil
}

func DeleteSubnet(id uint64) error {
	// address rows go with the subnet; the FK carries OnDelete:CASCADE but
	// sqlite test databases do not always enforce it
	if err := DB.Where("subnet_id = ?", id).Delete(&domain.IPAddress{}).Error; err != nil {
		return err
	}
	return DB.Delete(&domain.Subnet{}, id).Error
}

func CountSubnets() int64 {
	var count int64
	DB.Model(&domain.Subnet{}).Count(&count)
	return count
}

// validateSubnetPlacement enforces the containment and overlap rules:
// a subnet with a master must sit inside it, and siblings under the same
// master (or at the top level) must not overlap each other.
func validateSubnetPlacement(subnet *domain.Subnet) error {
	prefix, err := netip.ParsePrefix(subnet.CIDR)
	if err != nil {
		return fmt.Errorf("invalid cidr %q: %w", subnet.CIDR, err)
	}
	prefix = prefix.Masked()

	if subnet.MasterSubnetID != nil {
		master, err := GetSubnet(*subnet.MasterSubnetID)
		if err != nil {
			return ErrMasterNotFound
		}
		masterPrefix, err := master.Prefix()
		if err != nil {
			return err
		}
		if prefix.Bits() < masterPrefix.Bits() || !masterPrefix.Contains(prefix.Addr()) {
			return fmt.Errorf("%w: %s not inside %s", ErrOutsideMaster, prefix, masterPrefix)
		}
	}

	siblings := DB.Model(&domain.Subnet{}).Where("id <> ?", subnet.ID)
	if subnet.MasterSubnetID == nil {
		siblings = siblings.Where("master_subnet_id IS NULL")
	} else {
		siblings = siblings.Where("master_subnet_id = ?", *subnet.MasterSubnetID)
	}

	var existing []domain.Subnet
	if err := siblings.Find(&existing).Error; err != nil {
		return err
	}
	for _, sibling := range existing {
		siblingPrefix, err := sibling.Prefix()
		if err != nil {
			continue
		}
		if prefix.Overlaps(siblingPrefix) {
			return fmt.Errorf("%w: %s overlaps %s", ErrSubnetOverlap, prefix, siblingPrefix)
		}
	}

	return nil
}

const (
	defaultListPageSize = 10
	maxListPageSize     = 100
)

func normalizePaging(page, pageSize int) (int, int) {
	cfg := config.GetConfig()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = int(cfg.Lists.PageSize)
	}
	if pageSize <= 0 {
		pageSize = defaultListPageSize
	}
	max := int(cfg.Lists.MaxPageSize)
	if max <= 0 {
		max = maxListPageSize
	}
	if pageSize > max {
		pageSize = max
	}
	return page, pageSize
}
