package database

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ipamd/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBadCSVLayout = errors.New("csv layout not recognized")

// ExportSubnetCSV writes the subnet and its allocations in the exchange
// layout: subnet name, CIDR, a blank record, then ip,description rows
// ordered by address.
func ExportSubnetCSV(subnetID uint64, w io.Writer) error {
	subnet, err := GetSubnet(subnetID)
	if err != nil {
		return err
	}

	var addresses []domain.IPAddress
	if err := DB.Where("subnet_id = ?", subnetID).Order("ip_address").Find(&addresses).Error; err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{subnet.Name})
	_ = writer.Write([]string{subnet.CIDR})
	_ = writer.Write([]string{""})
	for _, address := range addresses {
		_ = writer.Write([]string{address.IPAddress, address.Description})
	}
	writer.Flush()
	return writer.Error()
}

// ImportSubnetCSV reads the same layout back. The subnet is created when
// no row with that CIDR exists yet; address rows already present are left
// untouched.
func ImportSubnetCSV(r io.Reader) (*domain.Subnet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	name, err := readField(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: missing subnet name", ErrBadCSVLayout)
	}
	cidr, err := readField(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: missing subnet cidr", ErrBadCSVLayout)
	}

	subnet, err := GetSubnetByCIDR(cidr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		subnet = &domain.Subnet{Name: name, CIDR: cidr}
		if createErr := CreateSubnet(subnet); createErr != nil {
			return nil, createErr
		}
	} else if err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadCSVLayout, err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		ip := domain.IPAddress{
			IPAddress: strings.TrimSpace(record[0]),
			SubnetID:  subnet.ID,
		}
		if len(record) > 1 {
			ip.Description = strings.TrimSpace(record[1])
		}

		if !subnet.Contains(ip.IPAddress) {
			return nil, fmt.Errorf("%w: %s not in %s", ErrAddressOutsideSubnet, ip.IPAddress, subnet.CIDR)
		}
		if err := DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&ip).Error; err != nil {
			return nil, err
		}
	}

	return subnet, nil
}

func readField(reader *csv.Reader) (string, error) {
	record, err := reader.Read()
	if err != nil {
		return "", err
	}
	if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(record[0]), nil
}
