package services

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/lborres/evently/core"
)

// Operation IDs shared by endpoint specs and HTTP adapters
const (
	OpRegister        = "registerWithEmailAndPassword"
	OpLogin           = "loginWithEmailAndPassword"
	OpRequestRecovery = "requestPasswordRecovery"
	OpConfirmRecovery = "confirmPasswordRecovery"
	OpGetSession      = "getSession"
)

// BaseEndpoints returns framework-agnostic endpoint specifications
// for the account endpoints.
//
// Adapters resolve their own handler from Metadata.OperationID, so the same
// table can drive any HTTP framework.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/register",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: OpRegister,
				Description: "Register an account using name, email and password",
				RequestBody: core.RegisterInput{},
				Responses: map[int]interface{}{
					http.StatusCreated:    core.MessageResponse{},
					http.StatusBadRequest: core.ErrorResponse{},
				},
			},
		},
		{
			Path:   "/login",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: OpLogin,
				Description: "Log in using email and password",
				RequestBody: core.LoginInput{},
				Responses: map[int]interface{}{
					http.StatusOK:         core.MessageResponse{},
					http.StatusBadRequest: core.ErrorResponse{},
				},
			},
		},
		{
			Path:   "/recover-password",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: OpRequestRecovery,
				Description: "Email a one-time passcode for password recovery",
				RequestBody: core.RecoveryRequestInput{},
				Responses: map[int]interface{}{
					http.StatusOK:                  core.MessageResponse{},
					http.StatusBadRequest:          core.ErrorResponse{},
					http.StatusInternalServerError: core.ErrorResponse{},
				},
			},
		},
		{
			Path:   "/update-password",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID: OpConfirmRecovery,
				Description: "Replace the password using a recovery passcode",
				RequestBody: core.RecoveryConfirmInput{},
				Responses: map[int]interface{}{
					http.StatusOK:         core.MessageResponse{},
					http.StatusBadRequest: core.ErrorResponse{},
				},
			},
		},
		{
			Path:      "/session",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetSession,
				Description: "Get the account behind the bearer token",
				Responses: map[int]interface{}{
					http.StatusOK:           core.SessionData{},
					http.StatusUnauthorized: core.ErrorResponse{},
				},
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
}

// NewEndpointRegistry creates a new registry with all base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	base := BaseEndpoints()
	for i := range base {
		reg.endpoints[endpointKey(&base[i])] = &base[i]
	}

	return reg
}

func endpointKey(ep *core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

// Register adds extra endpoints. If any of them conflicts with an existing
// endpoint or with another in the same batch, none are registered.
func (r *EndpointRegistry) Register(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := endpointKey(&endpoints[i])
		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.endpoints[endpointKey(&ep)] = &ep
	}
	return nil
}

// Endpoints returns all registered endpoints ordered by path then method
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
