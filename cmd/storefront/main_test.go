package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_KEY", "from-env")

	assert.Equal(t, "from-env", getEnv("STOREFRONT_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("STOREFRONT_TEST_MISSING", "fallback"))
}
