// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"

	"github.com/emberapp/ember-backend/internal/auth"
)

// RegisterRoutes wires profile endpoints under /api/v1
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Profile management
	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/picture", handler.UploadProfilePicture).Methods("POST")
	api.HandleFunc("/profile/picture", handler.DeleteProfilePicture).Methods("DELETE")

	// Preferences
	api.HandleFunc("/profile/preferences", handler.GetPreferences).Methods("GET")
	api.HandleFunc("/profile/preferences", handler.UpdatePreferences).Methods("PUT")

	// Other users & discovery
	api.HandleFunc("/users/{id}/profile", handler.GetUserProfile).Methods("GET")
	api.HandleFunc("/discover", handler.DiscoverProfiles).Methods("GET")
}
