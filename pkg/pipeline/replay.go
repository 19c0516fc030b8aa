package pipeline

import (
	"github.com/matzehuels/wordcanvas/pkg/actions"
	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// Replay builds a scene from history without caching.
func Replay(history []canvas.Entry, opts Options) (*scene.Scene, actions.Stats) {
	opts.SetReplayDefaults()

	s := actions.NewState(opts.Width, opts.Height, opts.Background)
	s.WordCloud = opts.WordCloud
	s.Logger = opts.Logger
	actions.NewRegistry().Replay(s, history)

	s.Scene.Name = opts.SceneName()
	return s.Scene, s.Stats
}

// ApplyMetadata sizes opts after a remote canvas. Explicit sizes in opts win.
func ApplyMetadata(opts *Options, m *canvas.Metadata) {
	if m == nil {
		return
	}
	if opts.Name == "" {
		opts.Name = m.Name
	}
	if opts.Width == 0 && m.Width > 0 {
		opts.Width = min(float64(m.Width), MaxSize)
	}
	if opts.Height == 0 && m.Height > 0 {
		opts.Height = min(float64(m.Height), MaxSize)
	}
	if opts.Background == "" && m.BgColor != "" {
		opts.Background = m.BgColor
	}
}
