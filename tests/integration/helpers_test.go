//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type testClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newTestClient(baseURL, apiKey string) *testClient {
	return &testClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

func (c *testClient) doRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (c *testClient) checkout(t *testing.T, ttl int) map[string]any {
	t.Helper()
	resp := c.doRequest(t, "POST", "/v1/leases", map[string]any{
		"ttl_seconds": ttl,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "failed to check out lease")
	return decodeResponse(t, resp)
}

func (c *testClient) getLease(t *testing.T, id string) map[string]any {
	t.Helper()
	resp := c.doRequest(t, "GET", fmt.Sprintf("/v1/leases/%s", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeResponse(t, resp)
}

func (c *testClient) extend(t *testing.T, id string, ttl int) *http.Response {
	t.Helper()
	return c.doRequest(t, "POST", fmt.Sprintf("/v1/leases/%s/extend", id), map[string]any{
		"ttl_seconds": ttl,
	})
}

func (c *testClient) returnLease(t *testing.T, id string) {
	t.Helper()
	resp := c.doRequest(t, "DELETE", fmt.Sprintf("/v1/leases/%s", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (c *testClient) status(t *testing.T) map[string]any {
	t.Helper()
	resp := c.doRequest(t, "GET", "/v1/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}
