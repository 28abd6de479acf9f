package campaign

type StatusResponse struct {
	CampaignRequested bool `json:"campaignRequested"`
	StopRequested     bool `json:"stopRequested"`
	Running           bool `json:"running"`
}
