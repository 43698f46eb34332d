package dto

// TokenResponse carries a freshly minted admin API token.
type TokenResponse struct {
	Token string `json:"token"`
}

// StatsResponse mirrors the administrator statistics view.
type StatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	ApprovedUsers    int64 `json:"approved_users"`
	TotalRequests    int64 `json:"total_requests"`
	UniqueDeliveries int64 `json:"unique_deliveries"`
	UniqueCachedURLs int64 `json:"unique_cached_urls"`
	TotalBytes       int64 `json:"total_bytes"`
}
