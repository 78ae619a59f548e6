package database

import (
	"errors"
	"math/big"
	"net/url"
	"testing"

	"ipamd/internal/domain"
	"ipamd/internal/ipam"
)

func TestAddressUsedPredicate(t *testing.T) {
	setupTestDB(t)

	subnet := mustCreateSubnet(t, "10.0.0.0/24")
	other := mustCreateSubnet(t, "10.9.0.0/24")

	if err := CreateIPAddress(&domain.IPAddress{IPAddress: "10.0.0.7", SubnetID: subnet.ID}); err != nil {
		t.Fatalf("create address: %v", err)
	}

	used := AddressUsed(subnet.ID)

	if got, err := used("10.0.0.7"); err != nil || !got {
		t.Fatalf("used(10.0.0.7) = %v, %v, want true", got, err)
	}
	if got, err := used("10.0.0.8"); err != nil || got {
		t.Fatalf("used(10.0.0.8) = %v, %v, want false", got, err)
	}

	// allocations are scoped per subnet
	if got, err := AddressUsed(other.ID)("10.0.0.7"); err != nil || got {
		t.Fatalf("used in other subnet = %v, %v, want false", got, err)
	}
}

func TestCreateIPAddressValidatesMembership(t *testing.T) {
	setupTestDB(t)

	subnet := mustCreateSubnet(t, "10.0.0.0/24")

	if err := CreateIPAddress(&domain.IPAddress{IPAddress: "192.168.3.1", SubnetID: subnet.ID}); !errors.Is(err, ErrAddressOutsideSubnet) {
		t.Fatalf("CreateIPAddress returned %v, want ErrAddressOutsideSubnet", err)
	}

	ip := domain.IPAddress{IPAddress: "10.0.0.5", SubnetID: subnet.ID}
	if err := CreateIPAddress(&ip); err != nil {
		t.Fatalf("CreateIPAddress returned error: %v", err)
	}

	duplicate := domain.IPAddress{IPAddress: "10.0.0.5", SubnetID: subnet.ID}
	if err := CreateIPAddress(&duplicate); err == nil {
		t.Fatal("expected unique violation for duplicate address, got nil")
	}
}

func TestHostSequenceForPaginatesAgainstStore(t *testing.T) {
	setupTestDB(t)

	subnet := mustCreateSubnet(t, "10.0.0.0/29")
	if err := CreateIPAddress(&domain.IPAddress{IPAddress: "10.0.0.2", SubnetID: subnet.ID}); err != nil {
		t.Fatalf("create address: %v", err)
	}

	seq, err := HostSequenceFor(subnet)
	if err != nil {
		t.Fatalf("HostSequenceFor returned error: %v", err)
	}
	if got := seq.Len(); got.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("Len returned %s, want 6", got)
	}

	requestURL, _ := url.Parse("http://ipam.local/subnets/1/hosts")
	page, err := ipam.NewPaginator(3, "start").Paginate(seq, requestURL)
	if err != nil {
		t.Fatalf("Paginate returned error: %v", err)
	}

	want := []ipam.HostEntry{
		{Address: "10.0.0.1", Used: false},
		{Address: "10.0.0.2", Used: true},
		{Address: "10.0.0.3", Used: false},
	}
	if len(page.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(page.Results), len(want))
	}
	for i, expected := range want {
		if page.Results[i] != expected {
			t.Fatalf("result %d = %+v, want %+v", i, page.Results[i], expected)
		}
	}
	if page.Next == nil {
		t.Fatal("expected next link")
	}
}

func TestFirstAvailableAndRequestIP(t *testing.T) {
	setupTestDB(t)

	subnet := mustCreateSubnet(t, "10.0.0.0/30") // two hosts
	address, ok, err := FirstAvailableIP(subnet)
	if err != nil {
		t.Fatalf("FirstAvailableIP returned error: %v", err)
	}
	if !ok || address != "10.0.0.1" {
		t.Fatalf("FirstAvailableIP returned %q (ok=%v), want 10.0.0.1", address, ok)
	}

	ip, err := RequestIP(subnet, "gateway")
	if err != nil {
		t.Fatalf("RequestIP returned error: %v", err)
	}
	if ip == nil || ip.IPAddress != "10.0.0.1" || ip.Description != "gateway" {
		t.Fatalf("RequestIP returned %+v, want 10.0.0.1/gateway", ip)
	}

	ip, err = RequestIP(subnet, "uplink")
	if err != nil {
		t.Fatalf("RequestIP returned error: %v", err)
	}
	if ip == nil || ip.IPAddress != "10.0.0.2" {
		t.Fatalf("RequestIP returned %+v, want 10.0.0.2", ip)
	}

	// subnet is now full
	ip, err = RequestIP(subnet, "third")
	if err != nil {
		t.Fatalf("RequestIP on full subnet returned error: %v", err)
	}
	if ip != nil {
		t.Fatalf("RequestIP on full subnet returned %+v, want nil", ip)
	}
}

func TestGetAddressPageOrdersByAddress(t *testing.T) {
	setupTestDB(t)

	subnet := mustCreateSubnet(t, "10.0.0.0/24")
	for _, address := range []string{"10.0.0.9", "10.0.0.1", "10.0.0.5"} {
		if err := CreateIPAddress(&domain.IPAddress{IPAddress: address, SubnetID: subnet.ID}); err != nil {
			t.Fatalf("create address %s: %v", address, err)
		}
	}

	addresses, total, err := GetAddressPage(subnet.ID, 1, 10)
	if err != nil {
		t.Fatalf("GetAddressPage returned error: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}

	want := []string{"10.0.0.1", "10.0.0.5", "10.0.0.9"}
	for i, expected := range want {
		if addresses[i].IPAddress != expected {
			t.Fatalf("address %d = %s, want %s", i, addresses[i].IPAddress, expected)
		}
	}
}
