package hda

import (
	"fmt"
	"strings"
)

// maxResolveDepth bounds the converter search through connection lists.
const maxResolveDepth = 50

// ConvGroup is an ordered list of converters forming one channel configuration.
type ConvGroup []Nid

// Equal reports whether both groups hold the same converters in the same order.
func (g ConvGroup) Equal(other ConvGroup) bool {
	if len(g) != len(other) {
		return false
	}

	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}

	return true
}

// Contains reports whether nid is a member of the group.
func (g ConvGroup) Contains(nid Nid) bool {
	for _, n := range g {
		if n == nid {
			return true
		}
	}

	return false
}

// String returns the converter ids as concatenated hexadecimal pairs, e.g. "0203".
func (g ConvGroup) String() string {
	var sb strings.Builder
	for _, n := range g {
		sb.WriteString(n.String())
	}

	return sb.String()
}

// ConvGroupSet is the list of available converter groups and the active one.
type ConvGroupSet struct {
	Groups []ConvGroup
	Cur    int
}

// Current returns the active group, or nil if there are no groups.
func (s *ConvGroupSet) Current() ConvGroup {
	if s.Cur < 0 || s.Cur >= len(s.Groups) {
		return nil
	}

	return s.Groups[s.Cur]
}

// Contains reports whether an identical group is already in the set.
func (s *ConvGroupSet) Contains(g ConvGroup) bool {
	for _, existing := range s.Groups {
		if existing.Equal(g) {
			return true
		}
	}

	return false
}

// add appends g unless it is empty, a duplicate, or the set is full.
func (s *ConvGroupSet) add(g ConvGroup) bool {
	if len(g) == 0 || len(s.Groups) >= MaxGroups || s.Contains(g) {
		return false
	}

	s.Groups = append(s.Groups, g)

	return true
}

// member reports whether nid appears in any group of the set.
func (s *ConvGroupSet) member(nid Nid) bool {
	for _, g := range s.Groups {
		if g.Contains(nid) {
			return true
		}
	}

	return false
}

// ResolveDAC finds the audio output converter feeding the widget nid.
// The currently selected connection is followed first, then every connection in order.
// Walks deeper than maxResolveDepth fail, so cyclic graphs report not found.
func (c *Codec) ResolveDAC(nid Nid) (Nid, bool) {
	type frame struct {
		nid   Nid
		depth int
	}

	// Shallowest depth at which a widget was expanded. A second expansion at the
	// same or a greater depth cannot find anything the first one did not.
	expanded := make(map[Nid]int)
	stack := []frame{{nid: nid}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		w := c.Widget(f.nid)
		if w == nil {
			continue
		}

		if w.Type == AC_WID_AUD_OUT {
			return w.Nid, true
		}

		depth := f.depth + 1
		if depth > maxResolveDepth {
			continue
		}

		if d, ok := expanded[w.Nid]; ok && d <= depth {
			continue
		}
		expanded[w.Nid] = depth

		order := make([]Nid, 0, len(w.Connections)+1)
		if w.Selected >= 0 && w.Selected < len(w.Connections) {
			order = append(order, w.Connections[w.Selected])
		}
		order = append(order, w.Connections...)

		// Push in reverse so the first candidate is popped first.
		for i := len(order) - 1; i >= 0; i-- {
			if c.Widget(order[i]) != nil {
				stack = append(stack, frame{nid: order[i], depth: depth})
			}
		}
	}

	return 0, false
}

// findPin returns the first output-capable pin of the given kind, association and sequence.
func (c *Codec) findPin(assoc, seq int, digital bool) *Widget {
	for _, w := range c.Widgets() {
		if w.Type != AC_WID_PIN || !w.Pin.Cap.Output() {
			continue
		}

		if w.Digital() != digital {
			continue
		}

		if w.Pin.Config.Association() == assoc && w.Pin.Config.Sequence() == seq {
			return w
		}
	}

	return nil
}

// addDACGroup scans the sequences of one association and appends the resulting group.
func (c *Codec) addDACGroup(assoc int, digital bool) {
	var group ConvGroup

	for seq := 0; seq < MaxSequences; seq++ {
		pin := c.findPin(assoc, seq, digital)
		if pin == nil {
			continue
		}

		dac, ok := c.ResolveDAC(pin.Nid)
		if !ok {
			c.log.Debug().Str("pin", pin.Name).Msg("no converter reachable from pin")

			continue
		}

		if group.Contains(dac) || len(group) >= MaxGroupConverters {
			continue
		}

		group = append(group, dac)
	}

	if c.DACs.add(group) {
		c.log.Debug().Int("assoc", assoc).Bool("digital", digital).Stringer("group", group).Msg("dac group")
	}
}

// initDACGroup is the generic converter grouping.
func (c *Codec) initDACGroup() error {
	c.DACs = ConvGroupSet{}
	c.ADCs = ConvGroupSet{}

	for assoc := 0; assoc < MaxAssociations; assoc++ {
		c.addDACGroup(assoc, false)
		c.addDACGroup(assoc, true)
	}

	// Converters no pin reaches are still exposed on their own.
	for _, w := range c.Widgets() {
		if w.Type != AC_WID_AUD_OUT || c.DACs.member(w.Nid) {
			continue
		}

		c.DACs.add(ConvGroup{w.Nid})
	}

	for _, w := range c.Widgets() {
		if w.Type == AC_WID_AUD_IN {
			c.ADCs.add(ConvGroup{w.Nid})
		}
	}

	return nil
}

// initFixedGroups installs converter groups known for a chip.
func (c *Codec) initFixedGroups(dacs, adcs []ConvGroup) error {
	c.DACs = ConvGroupSet{}
	c.ADCs = ConvGroupSet{}

	for _, g := range dacs {
		if err := c.checkGroup(g, AC_WID_AUD_OUT); err != nil {
			return err
		}
		c.DACs.add(g)
	}

	for _, g := range adcs {
		if err := c.checkGroup(g, AC_WID_AUD_IN); err != nil {
			return err
		}
		c.ADCs.add(g)
	}

	return nil
}

func (c *Codec) checkGroup(g ConvGroup, typ WidgetType) error {
	for _, nid := range g {
		w := c.Widget(nid)
		if w == nil || w.Type != typ {
			return fmt.Errorf("node %s is not an %s converter: %w", nid, typ, ErrNotFound)
		}
	}

	return nil
}
