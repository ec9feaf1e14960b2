package source

import (
	"fmt"
	"os"
)

// ReadFile captures a help text file as a RawDocument.
func ReadFile(origin Origin) (*RawDocument, error) {
	data, err := os.ReadFile(origin.File)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", origin.File, err)
	}
	kind := KindFile
	if origin.JSON {
		kind = KindJSON
	}
	return &RawDocument{Origin: origin, Kind: kind, Text: data}, nil
}
