package sequence

// Keyframe is a value at time T (ms, relative to the clip start). Ease
// shapes the segment that starts at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t" json:"t"`
	V    float64 `yaml:"v" json:"v"`
	Ease string  `yaml:"ease,omitempty" json:"ease,omitempty"`
}

// AutomationLane drives one output field over the clip. An empty lane
// yields Default.
type AutomationLane struct {
	Points  []Keyframe `yaml:"points" json:"points"`
	Default float64    `yaml:"default" json:"default"`
}

// Automation targets.
const (
	AutoDimmer      = "dimmer"
	AutoWhite       = "white"
	AutoAmber       = "amber"
	AutoIntensity   = "intensity"
	AutoHue         = "hue"
	AutoSaturation  = "saturation"
	AutoLightness   = "lightness"
	AutoPan         = "pan"
	AutoTilt        = "tilt"
	AutoStrobe      = "strobe"
	AutoComposition = "composition"
)

var automationTargets = map[string]bool{
	AutoDimmer: true, AutoWhite: true, AutoAmber: true, AutoIntensity: true,
	AutoHue: true, AutoSaturation: true, AutoLightness: true,
	AutoPan: true, AutoTilt: true, AutoStrobe: true, AutoComposition: true,
}

// Clip places one effect on the timeline over [StartMs, EndMs).
type Clip struct {
	ID         string                    `yaml:"id" json:"id"`
	StartMs    float64                   `yaml:"startMs" json:"startMs"`
	EndMs      float64                   `yaml:"endMs" json:"endMs"`
	Effect     string                    `yaml:"effect" json:"effect"`
	Zones      []string                  `yaml:"zones,omitempty" json:"zones,omitempty"`
	Keyframes  []Keyframe                `yaml:"keyframes,omitempty" json:"keyframes,omitempty"`
	Intensity  float64                   `yaml:"intensity,omitempty" json:"intensity,omitempty"`
	Params     map[string]any            `yaml:"params,omitempty" json:"params,omitempty"`
	Automation map[string]AutomationLane `yaml:"automation,omitempty" json:"automation,omitempty"`
}

// Duration is the window length in ms.
func (c *Clip) Duration() float64 { return c.EndMs - c.StartMs }

// Active reports whether t falls inside the clip window.
func (c *Clip) Active(t float64) bool { return t >= c.StartMs && t < c.EndMs }

// Project is a full show: clips in load order plus the seed every trigger
// seed derives from.
type Project struct {
	Name  string `yaml:"name" json:"name"`
	Seed  uint32 `yaml:"seed" json:"seed"`
	Clips []Clip `yaml:"clips" json:"clips"`
}

// End is the latest clip end in ms.
func (p *Project) End() float64 {
	var end float64
	for i := range p.Clips {
		if p.Clips[i].EndMs > end {
			end = p.Clips[i].EndMs
		}
	}
	return end
}
