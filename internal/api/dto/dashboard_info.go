package dto

type DashboardInfo struct {
	SubnetCount  int64 `json:"subnet_count"`
	AddressCount int64 `json:"address_count"`

	// ActiveInstances is how many service instances currently hold a
	// presence key; zero when redis is unreachable.
	ActiveInstances int `json:"active_instances"`

	Usage []SubnetUsage `json:"usage"`
}

// SubnetUsage is one per-subnet utilization snapshot. HostCount is text
// because an IPv6 subnet can hold more hosts than any integer type the
// wire format offers.
type SubnetUsage struct {
	SubnetID    uint64  `json:"subnet_id"`
	Name        string  `json:"name"`
	CIDR        string  `json:"cidr"`
	UsedCount   int64   `json:"used_count"`
	HostCount   string  `json:"host_count"`
	Utilization float64 `json:"utilization"`
}
