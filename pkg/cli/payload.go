package cli

import (
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// readPayload reads a webhook body from path, or from stdin when path is "-".
func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, goerr.New("payload file is required")
	}
	if path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read payload from stdin")
		}
		return body, nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read payload file", goerr.V("path", path))
	}
	return body, nil
}
