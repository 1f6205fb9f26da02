package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
)

func TestGoalListContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "goal_list.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	server := newDemoServer(t)
	status, _ := server.do(t, http.MethodPost, "/api/v1/goals/2/achieve", map[string]interface{}{"notes": "Shipped a full-stack side project"})
	require.Equal(t, http.StatusOK, status)

	for _, path := range []string{"/api/v1/goals", "/api/v1/goals?filter=completed", "/api/v1/goals?refresh=true"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := server.app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		var payload interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.NoError(t, schema.Validate(payload), path)
	}
}
