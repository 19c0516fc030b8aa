package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always produce equal keys.
type Keyer interface {
	// HTTPKey addresses a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// SceneKey addresses a replayed scene.
	SceneKey(historyHash string, opts SceneKeyOpts) string

	// ArtifactKey addresses a rendered output.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts holds the replay options that change the resulting scene.
type SceneKeyOpts struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MinSize   float64 `json:"min_size"`
	MaxSize   float64 `json:"max_size"`
	Step      float64 `json:"step"`
	Growth    float64 `json:"growth"`
	Margin    float64 `json:"margin"`
	TitleBand float64 `json:"title_band"`
	Measurer  string  `json:"measurer"`
	Name      string  `json:"name,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard key layout:
//
//	http:<namespace>:<key>
//	scene:<sha256(history hash, opts)>
//	artifact:<sha256(scene hash, opts)>
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SceneKey generates a key for scene caching.
func (DefaultKeyer) SceneKey(historyHash string, opts SceneKeyOpts) string {
	return hashKey("scene", historyHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns [Hash] of the JSON encoding of v. Histories and scenes are
// addressed by it, so equal content always shares cache entries.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// hashKey returns prefix:sha256(parts).
func hashKey(prefix string, parts ...any) string {
	sum, _ := HashJSON(parts)
	return prefix + ":" + sum
}
