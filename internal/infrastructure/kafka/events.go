package kafka

type EscrowEvent struct {
	EscrowID   string `json:"escrow_id"`
	ContractID string `json:"contract_id"`
	BusinessID string `json:"business_id"`
	TalentID   string `json:"talent_id"`
	Status     string `json:"status"`
	Amount     string `json:"amount"`
}

type DisputeEvent struct {
	DisputeID   string `json:"dispute_id"`
	EscrowID    string `json:"escrow_id"`
	MilestoneID string `json:"milestone_id"`
	InitiatedBy string `json:"initiated_by"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	Resolution  string `json:"resolution,omitempty"`
}

type PayoutEvent struct {
	PeriodID    string `json:"period_id"`
	ContractID  string `json:"contract_id"`
	TalentID    string `json:"talent_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	TotalHours  string `json:"total_hours"`
	NetAmount   string `json:"net_amount"`
}
