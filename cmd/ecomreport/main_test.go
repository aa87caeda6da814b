package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "média…", truncateText("média mensal", 5))
}

func TestNewExecutor_UnknownEngine(t *testing.T) {
	_, err := newExecutor(context.Background(), "duckdb", nil)
	assert.ErrorContains(t, err, "duckdb")
}

func TestLoadPlan_ConstraintsBeforeAnyLoad(t *testing.T) {
	assert.Equal(t, []string{stepConstraints, stepImport, stepSeed}, loadPlan(true, "olist", 500))
	assert.Equal(t, []string{stepImport}, loadPlan(false, "olist", 0))
	assert.Equal(t, []string{stepConstraints}, loadPlan(true, "", 0))
}
