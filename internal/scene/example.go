package scene

import (
	"bytes"
	_ "embed"
)

//go:embed example.yaml
var example []byte

// Example returns the bundled demo scene as YAML.
func Example() []byte {
	return bytes.Clone(example)
}

// ExampleScene decodes the demo scene.
func ExampleScene() (*Scene, error) {
	return Decode(bytes.NewReader(example))
}
