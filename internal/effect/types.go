package effect

// Phase is an effect lifecycle stage. Values are ordered; an instance only
// ever moves forward through them.
type Phase uint8

const (
	Idle Phase = iota
	Attack
	Sustain
	Decay
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Sustain:
		return "sustain"
	case Decay:
		return "decay"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Live reports whether the phase produces output.
func (p Phase) Live() bool { return p >= Attack && p <= Decay }

type Category string

const (
	CatIntensity Category = "intensity"
	CatColor     Category = "color"
	CatMovement  Category = "movement"
	CatOptics    Category = "optics"
	CatComposite Category = "composite"
)

// MixBus selects how an output meets the ambient base.
type MixBus string

const (
	// HTP outputs layer over the base with highest-value-wins.
	HTP MixBus = "htp"
	// Dictator outputs crossfade over the base by their composition weight.
	Dictator MixBus = "dictator"
)

// Blend is the per-zone override discipline.
type Blend string

const (
	BlendMax     Blend = "max"
	BlendReplace Blend = "replace"
)

// HSL is an abstract colour: h in degrees, s and l in percent.
type HSL struct {
	H float64 `json:"h" yaml:"h"`
	S float64 `json:"s" yaml:"s"`
	L float64 `json:"l" yaml:"l"`
}

// Movement drives moving heads. Pan and tilt are 0..1; relative movement is
// an offset from the current position.
type Movement struct {
	Pan      *float64 `json:"pan,omitempty"`
	Tilt     *float64 `json:"tilt,omitempty"`
	Absolute bool     `json:"isAbsolute"`
	Speed    float64  `json:"speed,omitempty"`
}

type ZoneOverride struct {
	Color    *HSL      `json:"color,omitempty"`
	Dimmer   *float64  `json:"dimmer,omitempty"`
	White    *float64  `json:"white,omitempty"`
	Amber    *float64  `json:"amber,omitempty"`
	Movement *Movement `json:"movement,omitempty"`
	Blend    Blend     `json:"blendMode,omitempty"`
}

// Output is what a live effect produces for one frame. Nil fields are unset.
type Output struct {
	EffectID string   `json:"effectId"`
	Category Category `json:"category"`
	Phase    Phase    `json:"phase"`
	Progress float64  `json:"progress"`

	Dimmer    *float64  `json:"dimmerOverride,omitempty"`
	White     *float64  `json:"whiteOverride,omitempty"`
	Amber     *float64  `json:"amberOverride,omitempty"`
	Color     *HSL      `json:"colorOverride,omitempty"`
	Strobe    *float64  `json:"strobeRate,omitempty"` // Hz
	Intensity float64   `json:"intensity"`
	Zones     []string  `json:"zones,omitempty"`
	Movement  *Movement `json:"movement,omitempty"`

	// Composition is the crossfade weight of a dictator output over the base.
	Composition *float64 `json:"globalComposition,omitempty"`

	// ZoneOverrides supersede the flat fields for the zones they name.
	ZoneOverrides map[string]ZoneOverride `json:"zoneOverrides,omitempty"`
}

// Float returns a pointer to v, for filling optional output fields.
func Float(v float64) *float64 { return &v }

// MusicalContext is the snapshot an effect receives at trigger time.
type MusicalContext struct {
	ZScore    float64  `json:"zScore" yaml:"z_score"`
	BPM       float64  `json:"bpm" yaml:"bpm"`
	Energy    float64  `json:"energy" yaml:"energy"`
	VibeID    string   `json:"vibeId" yaml:"vibe_id"`
	BeatPhase *float64 `json:"beatPhase,omitempty" yaml:"beat_phase,omitempty"`
	InDrop    *bool    `json:"inDrop,omitempty" yaml:"in_drop,omitempty"`
}

// TriggerConfig carries everything an effect consumes when it starts.
type TriggerConfig struct {
	Intensity float64
	Zones     []string
	Seed      uint32
	// HasSeed marks Seed as chosen by the caller, zero included.
	HasSeed bool
	Musical *MusicalContext
	Params  map[string]any
	Source  string
	Reason  string
}
