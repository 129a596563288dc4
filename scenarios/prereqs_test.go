package scenarios

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPrerequisitesAllHealthy(t *testing.T) {
	healthy := func(ctx context.Context) error { return nil }
	err := CheckPrerequisites(context.Background(), []Prereq{
		{Name: "gateway", Check: healthy},
		{Name: "log store", Check: healthy},
	})
	assert.NoError(t, err)
}

func TestCheckPrerequisitesReportsEveryFailure(t *testing.T) {
	err := CheckPrerequisites(context.Background(), []Prereq{
		{Name: "gateway", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
		{Name: "log store", Check: func(ctx context.Context) error { return nil }},
		{Name: "simulator", Check: func(ctx context.Context) error { return errors.New("HTTP 503") }},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway")
	assert.Contains(t, err.Error(), "simulator")
	assert.NotContains(t, err.Error(), "log store:")
}
