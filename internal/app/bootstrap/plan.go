package bootstrap

import (
	"fmt"
	"os"

	"ipamd/internal/database"
	"ipamd/internal/domain"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Plan is a declarative seed for the address plan, loaded once at
// startup. Applying it is idempotent, so the same file can ship with
// every deployment.
type Plan struct {
	Subnets []PlanSubnet `yaml:"subnets"`
}

type PlanSubnet struct {
	Name        string `yaml:"name"`
	CIDR        string `yaml:"cidr"`
	Description string `yaml:"description"`

	// Master references the parent subnet by its cidr. Parents must be
	// declared before their children.
	Master string `yaml:"master"`

	Reserved []PlanAddress `yaml:"reserved"`
}

type PlanAddress struct {
	Address     string `yaml:"address"`
	Description string `yaml:"description"`
}

func LoadPlan(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}

	for i, subnet := range plan.Subnets {
		if subnet.CIDR == "" {
			return nil, fmt.Errorf("plan subnet %d has no cidr", i)
		}
	}
	return &plan, nil
}

// ApplyPlan creates the subnets and reserved addresses of the plan that
// are not already present. Existing rows are left untouched.
func ApplyPlan(plan *Plan) error {
	for _, entry := range plan.Subnets {
		subnet, err := database.GetSubnetByCIDR(entry.CIDR)
		if err != nil {
			subnet = &domain.Subnet{
				Name:        entry.Name,
				CIDR:        entry.CIDR,
				Description: entry.Description,
			}
			if entry.Master != "" {
				master, err := database.GetSubnetByCIDR(entry.Master)
				if err != nil {
					return fmt.Errorf("plan subnet %s: master %s not found", entry.CIDR, entry.Master)
				}
				subnet.MasterSubnetID = &master.ID
			}
			if err := database.CreateSubnet(subnet); err != nil {
				return fmt.Errorf("plan subnet %s: %w", entry.CIDR, err)
			}
			log.Info("Seeded subnet", "cidr", subnet.CIDR, "name", subnet.Name)
		}

		used := database.AddressUsed(subnet.ID)
		for _, reserved := range entry.Reserved {
			taken, err := used(reserved.Address)
			if err != nil {
				return err
			}
			if taken {
				continue
			}
			ip := domain.IPAddress{
				IPAddress:   reserved.Address,
				Description: reserved.Description,
				SubnetID:    subnet.ID,
			}
			if err := database.CreateIPAddress(&ip); err != nil {
				return fmt.Errorf("plan address %s: %w", reserved.Address, err)
			}
			log.Info("Seeded reserved address", "address", ip.IPAddress, "subnet", subnet.CIDR)
		}
	}
	return nil
}
