package auth

import "fmt"

// AuthMethod represents the authentication method to use
type AuthMethod string

const (
	// DirectAPIKey uses a workspace-scoped API key sent as an ApiKey header
	DirectAPIKey AuthMethod = "apikey"
	// BearerToken uses a personal access token issued by the dashboard
	BearerToken AuthMethod = "token"
)

// ValidateMethod checks if the given string is a valid AuthMethod
func ValidateMethod(method string) (AuthMethod, error) {
	switch AuthMethod(method) {
	case DirectAPIKey:
		return DirectAPIKey, nil
	case BearerToken:
		return BearerToken, nil
	default:
		return "", fmt.Errorf("invalid auth method %q: must be 'apikey' or 'token'", method)
	}
}

// CredentialStore represents where credentials are persisted
type CredentialStore string

const (
	StoreHome    CredentialStore = "home"    // ~/.postline/credentials.json
	StoreProject CredentialStore = "project" // .postline/credentials.json
)

// ValidateStore checks if the given string is a valid CredentialStore
func ValidateStore(store string) (CredentialStore, error) {
	switch CredentialStore(store) {
	case StoreHome:
		return StoreHome, nil
	case StoreProject:
		return StoreProject, nil
	default:
		return "", fmt.Errorf("invalid store %q: must be 'home' or 'project'", store)
	}
}

// Credentials holds authentication credentials for the Postline API
type Credentials struct {
	WorkspaceID string     `json:"workspace_id"`
	APIKey      string     `json:"api_key,omitempty"` // workspace API key
	Token       string     `json:"token,omitempty"`   // personal access token
	Method      AuthMethod `json:"method"`
}

// GetAuthHeader returns the Authorization header value for the given credentials
func GetAuthHeader(creds *Credentials) string {
	switch creds.Method {
	case DirectAPIKey:
		return fmt.Sprintf("ApiKey %s:%s", creds.WorkspaceID, creds.APIKey)
	case BearerToken:
		return fmt.Sprintf("Bearer %s", creds.Token)
	default:
		return ""
	}
}
