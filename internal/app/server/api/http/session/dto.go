package session

type signupInput struct {
	Body signupRequest
}

type signupRequest struct {
	SecretKey   string `json:"secret_key" doc:"Hex encoded 32 byte ed25519 secret key" minLength:"64" maxLength:"64"`
	InviteToken string `json:"invite_token,omitempty" doc:"Signup token required by some homeservers"`
}

type signinInput struct {
	Body signinRequest
}

type signinRequest struct {
	SecretKey string `json:"secret_key" doc:"Hex encoded 32 byte ed25519 secret key" minLength:"64" maxLength:"64"`
}

type sessionOutput struct {
	Body sessionResponse
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	OwnerID       string `json:"owner_id,omitempty"`
	Capabilities  string `json:"capabilities,omitempty" example:"/pub/eventky.app/:rw"`
}

type emptyOutput struct{}

type startFlowInput struct {
	Body startFlowRequest
}

type startFlowRequest struct {
	Capabilities string `json:"capabilities,omitempty" doc:"Comma separated path:permission list, defaults to the application namespace"`
	RelayURL     string `json:"relay_url,omitempty" doc:"Relay to wait on, defaults to the configured relay"`
}

type flowOutput struct {
	Body flowResponse
}

type flowResponse struct {
	ID      string           `json:"id"`
	URL     string           `json:"url,omitempty"`
	Status  string           `json:"status" enum:"pending,approved"`
	Session *sessionResponse `json:"session,omitempty"`
}

type flowIDInput struct {
	ID string `path:"id" doc:"Flow id returned on start"`
}

type qrOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
