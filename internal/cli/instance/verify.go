package instance

import (
	"fmt"

	"github.com/jasonlovesdoggo/put/pkg/apiclient"
)

// Verify checks that the server at url is a genuine instance by
// fetching its signature. Returns the signature so callers can record
// the server version.
func Verify(url string) (*apiclient.Signature, error) {
	sig, err := apiclient.New(url).Signature()
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", url, err)
	}
	if !sig.Valid() {
		return nil, fmt.Errorf("%s does not identify as a put server (verifier %q)", url, sig.Verifier)
	}
	return sig, nil
}
