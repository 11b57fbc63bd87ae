package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/stagefx/internal/render"
	"github.com/coreman2200/stagefx/internal/zone"
)

func TestDriverCapturesFrames(t *testing.T) {
	d := &Driver{Every: 10}
	f := render.Neutral()
	f[zone.Air].Dimmer = 0.7
	for i := 0; i < 3; i++ {
		assert.NoError(t, d.Write(f))
	}
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, 0.7, d.Last[zone.Air].Dimmer)
	assert.NoError(t, d.Close())
}
