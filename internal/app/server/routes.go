package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"ipamd/internal/auth"

	"github.com/charmbracelet/log"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// absoluteRequestURL rebuilds the full request URL; pagination links are
// emitted as complete URLs, so the scheme and host have to be recovered
// from the request (and the proxy header when one is set).
func absoluteRequestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	return &u
}

func OpenRoutes(port int) error {
	router := http.NewServeMux()

	router.HandleFunc("POST /register", registerUser)
	router.HandleFunc("POST /login", loginUser)
	router.Handle("GET /checkLogin", auth.RequireAuth(http.HandlerFunc(checkLogin)))

	router.Handle("GET /dashboard", auth.RequireAuth(http.HandlerFunc(getDashboardInfo)))

	router.Handle("GET /subnets", auth.RequireAuth(http.HandlerFunc(getSubnets)))
	router.Handle("POST /subnets", auth.RequireAuth(http.HandlerFunc(createSubnet)))
	router.Handle("POST /subnets/import", auth.RequireAuth(http.HandlerFunc(importSubnet)))
	router.Handle("GET /subnets/{id}", auth.RequireAuth(http.HandlerFunc(getSubnet)))
	router.Handle("PUT /subnets/{id}", auth.RequireAuth(http.HandlerFunc(updateSubnet)))
	router.Handle("DELETE /subnets/{id}", auth.RequireAuth(http.HandlerFunc(deleteSubnet)))

	router.Handle("GET /subnets/{id}/hosts", auth.RequireAuth(http.HandlerFunc(getSubnetHosts)))
	router.Handle("GET /subnets/{id}/available", auth.RequireAuth(http.HandlerFunc(getFirstAvailableIP)))
	router.Handle("POST /subnets/{id}/request", auth.RequireAuth(http.HandlerFunc(requestIP)))
	router.Handle("POST /subnets/{id}/export", auth.RequireAuth(http.HandlerFunc(exportSubnet)))

	router.Handle("GET /subnets/{id}/addresses", auth.RequireAuth(http.HandlerFunc(getSubnetAddresses)))
	router.Handle("POST /subnets/{id}/addresses", auth.RequireAuth(http.HandlerFunc(createIPAddress)))
	router.Handle("GET /addresses/{id}", auth.RequireAuth(http.HandlerFunc(getIPAddress)))
	router.Handle("PUT /addresses/{id}", auth.RequireAuth(http.HandlerFunc(updateIPAddress)))
	router.Handle("DELETE /addresses/{id}", auth.RequireAuth(http.HandlerFunc(deleteIPAddress)))

	router.Handle("GET /global/settings", auth.IsAdmin(http.HandlerFunc(getGlobalSettings)))
	router.Handle("PUT /global/settings", auth.IsAdmin(http.HandlerFunc(updateGlobalSettings)))

	log.Debug("Routes opened")

	server := http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: enableCORS(router),
	}

	log.Infof("Starting ipamd backend on port :%d", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}
