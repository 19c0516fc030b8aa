package sink

import (
	"encoding/json"

	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// RenderJSON encodes the scene's draw commands, each tagged with its op.
func RenderJSON(sc *scene.Scene) ([]byte, error) {
	return json.MarshalIndent(sc, "", "  ")
}
