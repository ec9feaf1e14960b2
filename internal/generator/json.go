package generator

import "github.com/MuntasirSZN/d2o/internal/model"

// JSONDocument renders the tree in the versioned document format read back
// by model.Decode.
func JSONDocument(tree *model.Node) (string, error) {
	data, err := model.Encode(tree)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
