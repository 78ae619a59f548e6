package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"ipamd/internal/api/dto"
	"ipamd/internal/database"
	"ipamd/internal/domain"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// SubnetInput carries only the client-settable subnet fields
type SubnetInput struct {
	Name           string  `json:"name"`
	CIDR           string  `json:"cidr"`
	Description    string  `json:"description"`
	MasterSubnetID *uint64 `json:"master_subnet_id"`
}

func subnetFromRequest(w http.ResponseWriter, r *http.Request) (*domain.Subnet, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, "Invalid subnet id", http.StatusBadRequest)
		return nil, false
	}

	subnet, err := database.GetSubnet(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, "Subnet not found", http.StatusNotFound)
		} else {
			log.Error("Failed to load subnet", "id", id, "error", err)
			writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return subnet, true
}

// writeSubnetError maps the storage-level placement errors onto HTTP codes
func writeSubnetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrSubnetOverlap):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, database.ErrOutsideMaster),
		errors.Is(err, database.ErrMasterNotFound),
		errors.Is(err, database.ErrSubnetHasMaster):
		writeError(w, err.Error(), http.StatusBadRequest)
	case strings.Contains(err.Error(), "invalid cidr"):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("Subnet write failed", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func getSubnets(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	subnets, total, err := database.GetSubnetPage(page, pageSize)
	if err != nil {
		log.Error("Failed to list subnets", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.SubnetPage{Subnets: subnets, Total: total})
}

func createSubnet(w http.ResponseWriter, r *http.Request) {
	var input SubnetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	subnet := domain.Subnet{
		Name:           input.Name,
		CIDR:           input.CIDR,
		Description:    input.Description,
		MasterSubnetID: input.MasterSubnetID,
	}
	if err := database.CreateSubnet(&subnet); err != nil {
		writeSubnetError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, subnet)
}

func getSubnet(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, subnet)
}

func updateSubnet(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	var input SubnetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	subnet.Name = input.Name
	subnet.CIDR = input.CIDR
	subnet.Description = input.Description
	subnet.MasterSubnetID = input.MasterSubnetID

	if err := database.UpdateSubnet(subnet); err != nil {
		writeSubnetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subnet)
}

func deleteSubnet(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	if err := database.DeleteSubnet(subnet.ID); err != nil {
		log.Error("Failed to delete subnet", "id", subnet.ID, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func getFirstAvailableIP(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	address, found, err := database.FirstAvailableIP(subnet)
	if err != nil {
		log.Error("Failed to scan for free address", "subnet", subnet.CIDR, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		// a full subnet answers with a JSON null, not an error
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, address)
}

func requestIP(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	var input dto.IPRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	ip, err := database.RequestIP(subnet, input.Description)
	if err != nil {
		log.Error("Failed to allocate address", "subnet", subnet.CIDR, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if ip == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusCreated, ip)
}

func importSubnet(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("csvfile")
	if err != nil {
		writeError(w, "Missing csvfile upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		writeError(w, "Only csv files are supported", http.StatusBadRequest)
		return
	}

	subnet, err := database.ImportSubnetCSV(file)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrBadCSVLayout),
			errors.Is(err, database.ErrAddressOutsideSubnet):
			writeError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error("Subnet import failed", "error", err)
			writeError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, subnet)
}

func exportSubnet(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ip_address.csv"`)

	if err := database.ExportSubnetCSV(subnet.ID, w); err != nil {
		log.Error("Subnet export failed", "id", subnet.ID, "error", err)
	}
}
