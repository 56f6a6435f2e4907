package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// DecodeImageDataURI decodes a "data:image/<ext>;base64,<payload>" string
// into raw bytes plus the declared extension.
func DecodeImageDataURI(data string) ([]byte, string, error) {
	if !strings.HasPrefix(data, "data:image") {
		return nil, "", ErrInvalidDataURI
	}

	format, payload, found := strings.Cut(data, ";base64,")
	if !found {
		return nil, "", ErrInvalidDataURI
	}

	ext := format[strings.LastIndex(format, "/")+1:]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrInvalidDataURI
	}

	return decoded, ext, nil
}
