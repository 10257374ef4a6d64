package router

import (
	"net/http"

	"github.com/u22n/platform/internal/pkg/config"
)

// maintenanceAll blocks every route except the root and health probes.
const maintenanceAll = "*"

// middlewareMaintenance answers 503 for route patterns listed in
// app.maintenance.endpoints, e.g. "/api/v1/account/2fa/provision".
func middlewareMaintenance(cfg config.Config) Middleware {
	endpoints := make(map[string]struct{})
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			endpoints[endpoint] = struct{}{}
		}
	}
	_, all := endpoints[maintenanceAll]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			_, blocked := endpoints[route]
			if all && route != "/" && route != "/health" {
				blocked = true
			}
			if blocked {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
