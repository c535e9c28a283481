package dto

type DonorDashboard struct {
	Total  int64              `json:"total"`
	Counts map[string]int64   `json:"counts"`
	Recent []DonationResponse `json:"recent"`
}

type NGODashboard struct {
	Available   int64              `json:"available"`
	ClaimCounts map[string]int64   `json:"claim_counts"`
	Recent      []DonationResponse `json:"recent"`
}

type AdminDashboard struct {
	TotalUsers     int64            `json:"total_users"`
	UsersByRole    map[string]int64 `json:"users_by_role"`
	TotalDonations int64            `json:"total_donations"`
	Donations      map[string]int64 `json:"donations_by_status"`
}
