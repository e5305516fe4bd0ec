package model

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Consumer string `json:"consumer"`
}
