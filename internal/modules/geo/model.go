package geo

// State is a first-level administrative division. Farmers are located by
// state and LGA.
type State struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// LGA is a Local Government Area inside a state. LGA names are only unique
// within their state.
type LGA struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	StateID int64  `json:"state_id"`
}

// CreateStateRequest is the payload for registering a state.
type CreateStateRequest struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// CreateLGARequest is the payload for registering an LGA under a state.
type CreateLGARequest struct {
	Name    string `json:"name"`
	StateID int64  `json:"state_id"`
}
