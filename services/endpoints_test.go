package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/evently/core"
)

// Requirement: BaseEndpoints describes every account route with its method,
// operation ID and protection flag.
func TestBaseEndpoints(t *testing.T) {
	tests := []struct {
		name          string
		wantPath      string
		wantMethod    string
		wantOpID      string
		wantProtected bool
	}{
		{name: "register", wantPath: "/register", wantMethod: http.MethodPost, wantOpID: OpRegister},
		{name: "login", wantPath: "/login", wantMethod: http.MethodPost, wantOpID: OpLogin},
		{name: "recover password", wantPath: "/recover-password", wantMethod: http.MethodPost, wantOpID: OpRequestRecovery},
		{name: "update password", wantPath: "/update-password", wantMethod: http.MethodPost, wantOpID: OpConfirmRecovery},
		{name: "session", wantPath: "/session", wantMethod: http.MethodGet, wantOpID: OpGetSession, wantProtected: true},
	}

	// Arrange
	endpoints := BaseEndpoints()
	require.Len(t, endpoints, len(tests))
	byPath := make(map[string]core.Endpoint)
	for _, ep := range endpoints {
		byPath[ep.Path] = ep
	}

	// Act & Assert
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			ep, found := byPath[test.wantPath]
			require.True(t, found, "BaseEndpoints should include endpoint for path %q", test.wantPath)
			assert.Equal(t, test.wantMethod, ep.Method)
			assert.Equal(t, test.wantOpID, ep.Metadata.OperationID)
			assert.Equal(t, test.wantProtected, ep.Protected)
			assert.NotEmpty(t, ep.Metadata.Description, "endpoint %q should have a description", test.wantPath)
		})
	}
}

// Requirement: All endpoints must have unique OperationIDs.
func TestBaseEndpoints_OperationIDsAreUnique(t *testing.T) {
	operationIDs := make(map[string]bool)
	for _, ep := range BaseEndpoints() {
		assert.False(t, operationIDs[ep.Metadata.OperationID], "duplicate OperationID %q", ep.Metadata.OperationID)
		operationIDs[ep.Metadata.OperationID] = true
	}
}

// Requirement: EndpointRegistry registers all base endpoints on creation.
func TestEndpointRegistry_RegistersBaseEndpoints(t *testing.T) {
	// Arrange & Act
	registry := NewEndpointRegistry()

	// Assert
	var paths []string
	for _, ep := range registry.Endpoints() {
		paths = append(paths, ep.Path)
	}
	assert.Equal(t, []string{"/login", "/recover-password", "/register", "/session", "/update-password"}, paths)
}

// Requirement: EndpointRegistry rejects duplicate METHOD:PATH registrations
// atomically.
func TestEndpointRegistry_Register(t *testing.T) {
	tests := []struct {
		name      string
		endpoints []core.Endpoint
		wantErr   bool
		wantTotal int
	}{
		{
			name:      "rejects duplicate POST /register",
			endpoints: []core.Endpoint{{Path: "/register", Method: http.MethodPost}},
			wantErr:   true,
			wantTotal: 5,
		},
		{
			name:      "allows same path different method",
			endpoints: []core.Endpoint{{Path: "/register", Method: http.MethodGet}},
			wantTotal: 6,
		},
		{
			name: "registers several new endpoints",
			endpoints: []core.Endpoint{
				{Path: "/verify-email", Method: http.MethodPost},
				{Path: "/change-password", Method: http.MethodPost},
			},
			wantTotal: 7,
		},
		{
			name: "rejects duplicates within batch",
			endpoints: []core.Endpoint{
				{Path: "/verify-email", Method: http.MethodPost},
				{Path: "/verify-email", Method: http.MethodPost},
			},
			wantErr:   true,
			wantTotal: 5,
		},
		{
			name: "conflict later in batch registers nothing",
			endpoints: []core.Endpoint{
				{Path: "/verify-email", Method: http.MethodPost},
				{Path: "/session", Method: http.MethodGet},
			},
			wantErr:   true,
			wantTotal: 5,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			registry := NewEndpointRegistry()

			// Act
			err := registry.Register(test.endpoints)

			// Assert
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, registry.Endpoints(), test.wantTotal)
		})
	}
}
