package sanitize

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// ID generation backed by nanoid: short, URL-safe, collision-resistant.

// Alphabet is the character set for the random portion of generated IDs.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDLength is the number of random characters (excluding the prefix).
const IDLength = 12

const (
	nodePrefix  = "wi-"
	edgePrefix  = "ed-"
	graphPrefix = "gr-"
)

// NewNodeID generates a unique work item identifier.
func NewNodeID() (string, error) { return generate(nodePrefix) }

// NewEdgeID generates a unique edge identifier.
func NewEdgeID() (string, error) { return generate(edgePrefix) }

// NewGraphID generates a unique graph container identifier.
func NewGraphID() (string, error) { return generate(graphPrefix) }

func generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, IDLength)
	if err != nil {
		return "", fmt.Errorf("sanitize: generate id: %w", err)
	}
	return prefix + id, nil
}
