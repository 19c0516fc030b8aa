package sink

import (
	"bytes"
	"os/exec"

	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// rsvgConvert is the librsvg converter binary.
var rsvgConvert = "rsvg-convert"

// RenderPDF renders the scene as PDF by converting its SVG with rsvg-convert.
// Without librsvg installed it fails with UNSUPPORTED.
func RenderPDF(sc *scene.Scene) ([]byte, error) {
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"pdf export requires librsvg (brew install librsvg, apt install librsvg2-bin)")
	}

	cmd := exec.Command(bin, "-f", FormatPDF)
	cmd.Stdin = bytes.NewReader(RenderSVG(sc))
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rsvg-convert: %s", bytes.TrimSpace(stderr.Bytes()))
	}
	return out.Bytes(), nil
}
