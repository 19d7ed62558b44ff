package server

import "context"

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthCheckerFunc adapts a plain function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) bool

func (f HealthCheckerFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// All reports healthy only when every checker does.
func All(checkers ...HealthChecker) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) bool {
		for _, c := range checkers {
			if !c.Healthy(ctx) {
				return false
			}
		}
		return true
	})
}

type Status struct {
	Status string `json:"status"`
}

func Healthy() Status {
	return Status{Status: "ok"}
}

func Unhealthy() Status {
	return Status{Status: "unavailable"}
}
