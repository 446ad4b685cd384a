package objects

import (
	"gopkg.in/yaml.v3"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// ID derives a stable content identifier for v: a UUID rendered from a
// digest of the version-free document form. Two instances share an ID
// exactly when they serialize identically; hidden arguments and package
// versions never influence it.
func ID(v any, opts ...Option) (string, error) {
	doc, err := ToDocument(v, append([]Option{WithoutVersion()}, opts...)...)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Equal reports whether a and b are content-equal: same registered class
// and identical document form.
func Equal(a, b any, opts ...Option) bool {
	idA, err := ID(a, opts...)
	if err != nil {
		return false
	}
	idB, err := ID(b, opts...)
	if err != nil {
		return false
	}
	return idA == idB
}
