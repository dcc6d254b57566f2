package badger

import "fmt"

// Key prefixes for the artifact kinds. The suffix is the caller-supplied
// artifact key, itself derived from stage name plus provenance tuple.
const (
	matrixPrefix = "artmat"
	labelsPrefix = "artlbl"
	jsonPrefix   = "artdoc"
)

// makeMatrixKey generates a key for a matrix artifact.
func makeMatrixKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", matrixPrefix, key))
}

// makeLabelsKey generates a key for a label-assignment artifact.
func makeLabelsKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", labelsPrefix, key))
}

// makeJSONKey generates a key for a JSON document artifact.
func makeJSONKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jsonPrefix, key))
}
