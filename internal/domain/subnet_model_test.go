package domain

import "testing"

func TestSubnetBeforeSaveCanonicalizesCIDR(t *testing.T) {
	subnet := Subnet{Name: "lab", CIDR: "10.0.0.5/24"}
	if err := subnet.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if subnet.CIDR != "10.0.0.0/24" {
		t.Fatalf("CIDR = %q, want 10.0.0.0/24", subnet.CIDR)
	}

	subnet = Subnet{Name: "bad", CIDR: "10.0.0.0-24"}
	if err := subnet.BeforeSave(nil); err == nil {
		t.Fatal("expected error for malformed CIDR, got nil")
	}
}

func TestSubnetContains(t *testing.T) {
	subnet := Subnet{CIDR: "192.168.0.0/24"}

	if !subnet.Contains("192.168.0.42") {
		t.Fatal("expected 192.168.0.42 to be inside 192.168.0.0/24")
	}
	if subnet.Contains("192.168.1.1") {
		t.Fatal("expected 192.168.1.1 to be outside 192.168.0.0/24")
	}
	if subnet.Contains("fd00::1") {
		t.Fatal("expected fd00::1 to be outside an IPv4 subnet")
	}
	if subnet.Contains("garbage") {
		t.Fatal("expected invalid text to be outside")
	}

	v6 := Subnet{CIDR: "fd00::/64"}
	if !v6.Contains("fd00::1234") {
		t.Fatal("expected fd00::1234 to be inside fd00::/64")
	}
}

func TestIPAddressBeforeSaveCanonicalizes(t *testing.T) {
	ip := IPAddress{IPAddress: "FD00::0001", SubnetID: 1}
	if err := ip.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if ip.IPAddress != "fd00::1" {
		t.Fatalf("IPAddress = %q, want fd00::1", ip.IPAddress)
	}

	ip = IPAddress{IPAddress: "10.0.0.999"}
	if err := ip.BeforeSave(nil); err == nil {
		t.Fatal("expected error for malformed address, got nil")
	}
}
