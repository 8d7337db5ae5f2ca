// internal/connections/handlers.go

package connections

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/emberapp/ember-backend/internal/common/utils"
)

// BlockRequest carries the optional reason for a block.
type BlockRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// Handler exposes connection endpoints
type Handler struct {
	service Service
}

// NewHandler creates a new connections handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func pathUserID(r *http.Request) (int64, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Like handles POST /connections/like/{userId}
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value("userID").(int64)

	targetID, ok := pathUserID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	result, err := h.service.Like(r.Context(), actorID, targetID)
	if err != nil {
		switch err {
		case ErrCannotLikeSelf:
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case ErrUserBlocked:
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to like user")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}

// Unmatch handles POST /connections/unmatch/{userId}
func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value("userID").(int64)

	otherID, ok := pathUserID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.Unmatch(r.Context(), actorID, otherID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to unmatch user")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Unmatched")
}

// Block handles POST /connections/block/{userId}
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value("userID").(int64)

	targetID, ok := pathUserID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req BlockRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.service.Block(r.Context(), actorID, targetID, req.Reason); err != nil {
		switch err {
		case ErrCannotBlockSelf:
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to block user")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "User blocked")
}

// Unblock handles DELETE /connections/block/{userId}
func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value("userID").(int64)

	targetID, ok := pathUserID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.Unblock(r.Context(), actorID, targetID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to unblock user")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "User unblocked")
}

// GetState handles GET /connections/state/{userId}
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value("userID").(int64)

	otherID, ok := pathUserID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	state, err := h.service.GetState(r.Context(), actorID, otherID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get connection state")
		return
	}

	utils.RespondWithData(w, http.StatusOK, state)
}

// GetMatches handles GET /connections/matches
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	matches, err := h.service.GetMatches(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, matches)
}

// GetBlocked handles GET /connections/blocked
func (h *Handler) GetBlocked(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	blocks, err := h.service.GetBlocked(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get blocked users")
		return
	}

	utils.RespondWithData(w, http.StatusOK, blocks)
}

// GetChannel handles GET /connections/channel/{userId}
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value("userID").(int64)

	otherID, ok := pathUserID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	channelID, err := h.service.EnsureChannel(r.Context(), actorID, otherID)
	if err != nil {
		switch err {
		case ErrNotMatched:
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to open chat channel")
		}
		return
	}

	token, err := h.service.ChannelToken(actorID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to issue chat token")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{
		"channel_id": channelID,
		"chat_token": token,
	})
}
