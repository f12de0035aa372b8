package health

import (
	"context"
	"sync"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Report is the outcome of a single component check.
type Report struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func Healthy(name string) Report {
	return Report{Name: name, Status: StatusHealthy, Timestamp: time.Now()}
}

func Unhealthy(name string, err error) Report {
	r := Report{Name: name, Status: StatusUnhealthy, Timestamp: time.Now()}
	if err != nil {
		r.Message = err.Error()
	}
	return r
}

// FromError maps a nil error to Healthy and anything else to Unhealthy.
func FromError(name string, err error) Report {
	if err != nil {
		return Unhealthy(name, err)
	}
	return Healthy(name)
}

func (r Report) OK() bool {
	return r.Status == StatusHealthy
}

type Checker interface {
	CheckHealth(ctx context.Context) Report
}

type Health struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]Report `json:"checks"`
}

type CheckerRegistry struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
}

func NewCheckerRegistry(timeout time.Duration) *CheckerRegistry {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CheckerRegistry{timeout: timeout}
}

func (r *CheckerRegistry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// Check runs every registered checker; the overall status is unhealthy if
// any one of them is.
func (r *CheckerRegistry) Check(ctx context.Context) Health {
	r.mu.RLock()
	checkers := append([]Checker(nil), r.checkers...)
	r.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(map[string]Report, len(checkers))
	overall := StatusHealthy
	for _, checker := range checkers {
		report := checker.CheckHealth(ctx)
		if !report.OK() {
			overall = StatusUnhealthy
		}
		results[report.Name] = report
	}

	return Health{
		Status:    overall,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) Report

func (f CheckerFunc) CheckHealth(ctx context.Context) Report {
	return f(ctx)
}
