package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ipamd/internal/api/dto"
	"ipamd/internal/database"
	"ipamd/internal/domain"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// AddressInput carries only the client-settable address fields
type AddressInput struct {
	IPAddress   string `json:"ip_address"`
	Description string `json:"description"`
}

func addressFromRequest(w http.ResponseWriter, r *http.Request) (*domain.IPAddress, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, "Invalid address id", http.StatusBadRequest)
		return nil, false
	}

	ip, err := database.GetIPAddress(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, "Address not found", http.StatusNotFound)
		} else {
			log.Error("Failed to load address", "id", id, "error", err)
			writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return ip, true
}

func writeAddressError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrAddressOutsideSubnet):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		writeError(w, "Address already allocated", http.StatusConflict)
	default:
		log.Error("Address write failed", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func getSubnetAddresses(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	addresses, total, err := database.GetAddressPage(subnet.ID, page, pageSize)
	if err != nil {
		log.Error("Failed to list addresses", "subnet", subnet.ID, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.AddressPage{Addresses: addresses, Total: total})
}

func createIPAddress(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	var input AddressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ip := domain.IPAddress{
		IPAddress:   input.IPAddress,
		Description: input.Description,
		SubnetID:    subnet.ID,
	}
	if err := database.CreateIPAddress(&ip); err != nil {
		writeAddressError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ip)
}

func getIPAddress(w http.ResponseWriter, r *http.Request) {
	ip, ok := addressFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ip)
}

func updateIPAddress(w http.ResponseWriter, r *http.Request) {
	ip, ok := addressFromRequest(w, r)
	if !ok {
		return
	}

	var input AddressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ip.IPAddress = input.IPAddress
	ip.Description = input.Description

	if err := database.UpdateIPAddress(ip); err != nil {
		writeAddressError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ip)
}

func deleteIPAddress(w http.ResponseWriter, r *http.Request) {
	ip, ok := addressFromRequest(w, r)
	if !ok {
		return
	}

	if err := database.DeleteIPAddress(ip.ID); err != nil {
		log.Error("Failed to delete address", "id", ip.ID, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
