package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/moneydrop/moneydrop-backend/internal/hub"
)

type createRoomRequest struct {
	HostName   string `json:"hostName"`
	MaxPlayers int    `json:"maxPlayers"`
}

// CreateRoom lets a host open a room over plain HTTP before the socket is
// up. The websocket CREATE_ROOM event is the other way in.
func CreateRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if req.HostName == "" {
			http.Error(w, "hostName is required", http.StatusBadRequest)
			return
		}

		reply := make(chan hub.CreateResult, 1)
		h.Inbox() <- hub.CreateRoom{HostName: req.HostName, MaxPlayers: req.MaxPlayers, Reply: reply}
		res := <-reply
		if res.Err != nil {
			log.Error("create room failed", zap.Error(res.Err))
			http.Error(w, "failed to create room", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: res.Code})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
