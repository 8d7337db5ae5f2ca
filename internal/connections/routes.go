// internal/connections/routes.go

package connections

import (
	"github.com/gorilla/mux"

	"github.com/emberapp/ember-backend/internal/auth"
)

// RegisterRoutes wires connection endpoints under /api/v1/connections
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/connections").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Lifecycle actions
	api.HandleFunc("/like/{userId}", handler.Like).Methods("POST")
	api.HandleFunc("/unmatch/{userId}", handler.Unmatch).Methods("POST")
	api.HandleFunc("/block/{userId}", handler.Block).Methods("POST")
	api.HandleFunc("/block/{userId}", handler.Unblock).Methods("DELETE")

	// Queries
	api.HandleFunc("/state/{userId}", handler.GetState).Methods("GET")
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/blocked", handler.GetBlocked).Methods("GET")
	api.HandleFunc("/channel/{userId}", handler.GetChannel).Methods("GET")
}
