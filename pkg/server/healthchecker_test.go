package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAll(t *testing.T) {
	up := HealthCheckerFunc(func(context.Context) bool { return true })
	down := HealthCheckerFunc(func(context.Context) bool { return false })

	tests := []struct {
		name     string
		checkers []HealthChecker
		want     bool
	}{
		{name: "none", want: true},
		{name: "all up", checkers: []HealthChecker{up, up}, want: true},
		{name: "one down", checkers: []HealthChecker{up, down}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, All(tc.checkers...).Healthy(context.Background()))
		})
	}
}
