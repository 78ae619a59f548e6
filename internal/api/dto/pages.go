package dto

import "ipamd/internal/domain"

// SubnetPage and AddressPage use the generic page-number pagination with
// a client-settable size; the hosts listing has its own cursor-based
// shape in the ipam package.
type SubnetPage struct {
	Subnets []domain.Subnet `json:"subnets"`
	Total   int64           `json:"total"`
}

type AddressPage struct {
	Addresses []domain.IPAddress `json:"addresses"`
	Total     int64              `json:"total"`
}
