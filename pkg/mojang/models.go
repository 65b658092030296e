package mojang

// ProfileResponse represents the response from the Mojang profile API.
// Error responses share the same shape with Error and ErrorMessage set.
type ProfileResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Legacy       bool   `json:"legacy,omitempty"`
	Demo         bool   `json:"demo,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Profile is a resolved Minecraft player identity.
type Profile struct {
	// ID is the player UUID exactly as Mojang returned it (undashed).
	ID string

	// Name is the canonical casing of the player name.
	Name string
}
