package server

import (
	"net/http"

	"ipamd/internal/config"
	"ipamd/internal/database"
	"ipamd/internal/ipam"

	"github.com/charmbracelet/log"
)

// getSubnetHosts walks the complete host range of a subnet, used or not,
// one fixed-size window per request. The cursor is an address inside the
// subnet, so a page link stays valid no matter how many allocations
// happen between requests.
func getSubnetHosts(w http.ResponseWriter, r *http.Request) {
	subnet, ok := subnetFromRequest(w, r)
	if !ok {
		return
	}

	seq, err := database.HostSequenceFor(subnet)
	if err != nil {
		log.Error("Failed to build host view", "subnet", subnet.CIDR, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	cfg := config.GetConfig()
	paginator := ipam.NewPaginator(int(cfg.Hosts.PageLimit), cfg.Hosts.CursorParam)

	page, err := paginator.Paginate(seq, absoluteRequestURL(r))
	if err != nil {
		log.Error("Failed to render host page", "subnet", subnet.CIDR, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
