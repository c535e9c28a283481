package dto

import (
	"encoding/json"
	"time"

	"foodshare_backend/internal/models"
)

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		resp.Data = json.RawMessage(n.Data)
	}
	return resp
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
	TotalPages    int                    `json:"total_pages"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllResult reports a best-effort bulk read. Failed lists the ids that
// are still unread.
type MarkAllResult struct {
	Marked int      `json:"marked"`
	Failed []string `json:"failed"`
}

func (r MarkAllResult) Partial() bool {
	return len(r.Failed) > 0
}

type AnnouncementRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=255"`
	Message string `json:"message" validate:"required,notblank"`
}
