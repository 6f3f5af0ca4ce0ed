package application

import (
	"context"
	"time"
)

// Pinger is satisfied by the database handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReport is the body of the health endpoint.
type HealthReport struct {
	Status   string    `json:"status"`
	Time     time.Time `json:"time"`
	Database string    `json:"database"`
}

// Healthy reports whether every dependency answered.
func (r HealthReport) Healthy() bool { return r.Status == "ok" }

// HealthService checks the gate's local dependencies. GitHub is not probed;
// an outage there only shows up as failed status reports.
type HealthService struct {
	db  Pinger
	now func() time.Time
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(db Pinger) *HealthService {
	return &HealthService{db: db, now: time.Now}
}

// Check pings the database with a short deadline.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	report := HealthReport{Status: "ok", Database: "ok", Time: s.now().UTC()}
	if err := s.db.Ping(ctx); err != nil {
		report.Status = "degraded"
		report.Database = err.Error()
	}
	return report
}
