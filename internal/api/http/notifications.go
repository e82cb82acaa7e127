package http

import (
	"net/http"
	"strconv"

	"munlink-backend/internal/domain"
)

func queryInt32(r *http.Request, name string) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	page, pageSize := queryInt32(r, "page"), queryInt32(r, "page_size")
	list, total, err := s.svc.Notifications.GetNotifications(r.Context(), ActorFromContext(r.Context()).ID, page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"total":         total,
	})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Notifications.MarkAsRead(r.Context(), ActorFromContext(r.Context()).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
