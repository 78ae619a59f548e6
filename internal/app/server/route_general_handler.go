package server

import (
	"encoding/json"
	"net/http"

	"ipamd/internal/api/dto"
	"ipamd/internal/config"
	"ipamd/internal/database"
	"ipamd/internal/jobs/runtime"
	"ipamd/internal/support"

	"github.com/charmbracelet/log"
)

func getDashboardInfo(w http.ResponseWriter, r *http.Request) {
	info := dto.DashboardInfo{
		SubnetCount:  database.CountSubnets(),
		AddressCount: database.CountAllAddresses(),
	}

	// prefer the cached snapshots, fall back to a live computation when
	// the cache is cold or redis is unreachable
	if client, err := support.GetRedisClient(); err == nil {
		if count, err := runtime.CountActiveInstances(r.Context(), client); err == nil {
			info.ActiveInstances = count
		}
		if usage, err := runtime.CachedUsage(r.Context(), client); err == nil && len(usage) > 0 {
			info.Usage = usage
		}
	}

	if info.Usage == nil {
		subnets, err := database.GetAllSubnets()
		if err != nil {
			log.Error("Failed to list subnets for dashboard", "error", err)
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		for i := range subnets {
			usage, err := runtime.ComputeSubnetUsage(&subnets[i])
			if err != nil {
				log.Warn("Skipping unusable subnet in dashboard", "cidr", subnets[i].CIDR, "error", err)
				continue
			}
			info.Usage = append(info.Usage, usage)
		}
	}

	writeJSON(w, http.StatusOK, info)
}

func getGlobalSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.GetConfig())
}

func updateGlobalSettings(w http.ResponseWriter, r *http.Request) {
	var newConfig config.Config
	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	config.SetConfig(newConfig)
	// a changed snapshot timer takes effect without a restart
	config.SetBetweenTime()

	if err := config.SaveSettings(); err != nil {
		log.Error("Failed to persist settings", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, config.GetConfig())
}
