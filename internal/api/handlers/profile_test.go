package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/heritage-gallery/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().WithDisplayName("Collector").BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
		check          func(*testing.T, map[string]interface{})
	}{
		{
			name:           "choose collector role",
			body:           map[string]interface{}{"marketplaceRole": "collector"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result map[string]interface{}) {
				assert.Equal(t, "collector", result["marketplaceRole"])
				assert.Equal(t, "Collector", result["displayName"])
			},
		},
		{
			name:           "rename",
			body:           map[string]interface{}{"displayName": "Art Lover"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, result map[string]interface{}) {
				assert.Equal(t, "Art Lover", result["displayName"])
				assert.Equal(t, "collector", result["marketplaceRole"])
			},
		},
		{
			name:           "invalid role",
			body:           map[string]interface{}{"marketplaceRole": "dealer"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "marketplaceRole must be one of viewer, artist, collector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/users/me"), tt.body, token)
			resp := testutil.Do(t, req)

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}
			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			var result map[string]interface{}
			testutil.AssertJSONResponse(t, resp, &result)
			tt.check(t, result)
		})
	}

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/me"), nil, token)
	resp := testutil.Do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, "Art Lover", result["displayName"])

	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/me"), nil, "")
	resp = testutil.Do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
