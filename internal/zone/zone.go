package zone

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ID is a leaf zone: the smallest addressable group of fixtures.
type ID uint8

const (
	FrontLeft ID = iota
	FrontRight
	BackLeft
	BackRight
	Floor
	MoversLeft
	MoversRight
	Center
	Air
	Ambient

	// Count is the number of leaf zones.
	Count
)

var leafNames = [Count]string{
	FrontLeft:   "front-left",
	FrontRight:  "front-right",
	BackLeft:    "back-left",
	BackRight:   "back-right",
	Floor:       "floor",
	MoversLeft:  "movers-left",
	MoversRight: "movers-right",
	Center:      "center",
	Air:         "air",
	Ambient:     "ambient",
}

func (id ID) String() string {
	if id >= Count {
		return fmt.Sprintf("zone(%d)", uint8(id))
	}
	return leafNames[id]
}

// IsMover reports whether the zone holds moving heads.
func (id ID) IsMover() bool { return id == MoversLeft || id == MoversRight }

// ErrUnknownZone is returned for identifiers outside the vocabulary.
var ErrUnknownZone = errors.New("unknown zone")

// Set is a bitmask of leaf zones.
type Set uint16

// All contains every leaf zone.
const All = Set(1<<Count - 1)

func Of(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

func (s Set) Add(id ID) Set { return s | 1<<id }
func (s Set) Has(id ID) bool { return s&(1<<id) != 0 }
func (s Set) Union(o Set) Set { return s | o }
func (s Set) Empty() bool { return s == 0 }

// IDs lists the members in ascending order.
func (s Set) IDs() []ID {
	out := make([]ID, 0, Count)
	for id := ID(0); id < Count; id++ {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s Set) Len() int {
	n := 0
	for id := ID(0); id < Count; id++ {
		if s.Has(id) {
			n++
		}
	}
	return n
}

var (
	front     = Of(FrontLeft, FrontRight)
	back      = Of(BackLeft, BackRight)
	allPars   = front | back | Of(Floor)
	allMovers = Of(MoversLeft, MoversRight)
)

// aggregates maps group identifiers onto leaf sets.
var aggregates = map[string]Set{
	"front":      front,
	"back":       back,
	"pars-left":  Of(FrontLeft, BackLeft),
	"pars-right": Of(FrontRight, BackRight),
	"all-pars":   allPars,
	"pars":       allPars,
	"all-movers": allMovers,
	"movers":     allMovers,
	"all":        All,
}

var leafByName = func() map[string]ID {
	m := make(map[string]ID, Count)
	for id := ID(0); id < Count; id++ {
		m[leafNames[id]] = id
	}
	return m
}()

func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// Parse resolves a leaf or aggregate identifier to its leaf set.
// Underscore spellings are accepted as aliases.
func Parse(name string) (Set, error) {
	n := normalize(name)
	if id, ok := leafByName[n]; ok {
		return Of(id), nil
	}
	if s, ok := aggregates[n]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownZone, name)
}

// ParseAll unions every identifier. The first unknown one fails the call.
func ParseAll(names []string) (Set, error) {
	var s Set
	for _, n := range names {
		z, err := Parse(n)
		if err != nil {
			return 0, err
		}
		s |= z
	}
	return s, nil
}

func Known(name string) bool {
	_, err := Parse(name)
	return err == nil
}

// Names lists every accepted identifier (leaves and aggregates), sorted.
func Names() []string {
	out := make([]string, 0, int(Count)+len(aggregates))
	for id := ID(0); id < Count; id++ {
		out = append(out, leafNames[id])
	}
	for k := range aggregates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
