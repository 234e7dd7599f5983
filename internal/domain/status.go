package domain

// ServiceStatus is the health of one backend service.
type ServiceStatus struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	OK      bool   `json:"ok"`
}

type StatusReport struct {
	Services []ServiceStatus `json:"services"`
	Healthy  bool            `json:"healthy"`
}
