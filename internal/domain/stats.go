package domain

// AdminStats is the aggregate snapshot behind the dashboard home page.
type AdminStats struct {
	TotalUsers         int64            `json:"total_users"`
	SignupsLast30Days  int64            `json:"signups_last_30_days"`
	ListingsByStatus   map[string]int64 `json:"listings_by_status"`
	TotalConversations int64            `json:"total_conversations"`
	TotalMessages      int64            `json:"total_messages"`
	TicketsByStatus    map[string]int64 `json:"tickets_by_status"`
}
