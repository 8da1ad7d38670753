package kernel

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/pkg/testkit"
)

func TestScenarios(t *testing.T) {
	testkit.RunDir(t, func(t *testing.T) http.Handler {
		h, err := Handler(memoryStores(t))
		require.NoError(t, err)
		return h
	}, "testdata")
}
