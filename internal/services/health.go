package services

// Health summarizes the readiness of a pipeline collaborator.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// HealthReporter is implemented by collaborators that can describe their own
// readiness without performing work.
type HealthReporter interface {
	HealthCheck() Health
}
