package dto

// GenerateTransactionsResponse reports the outcome of demo data generation
type GenerateTransactionsResponse struct {
	Message             string `json:"message"`
	TransactionsCreated int    `json:"transactions_created"`
	Days                int    `json:"days"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
