package apiclient

// Verifier is the value a genuine server reports in its signature
// payload.
const Verifier = "ArafOrzCatMan"

// Signature identifies a server instance.
type Signature struct {
	Version            string   `json:"version"`
	Verifier           string   `json:"verifier"`
	CompatibleVersions []string `json:"compatible_versions"`
}

// Valid reports whether the payload identifies a genuine server.
func (s *Signature) Valid() bool {
	return s.Verifier == Verifier
}

// Signature fetches the server's identity payload. The endpoint lives
// at the root, outside the API prefix, and requires no token.
func (c *Client) Signature() (*Signature, error) {
	var sig Signature
	if err := c.put("/signature", nil, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}
