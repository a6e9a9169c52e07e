package hda

import (
	"fmt"
)

var (
	offOn    = []EnumMember{{AudioNOff, 0}, {AudioNOn, 1}}
	inputOut = []EnumMember{{AudioNInput, 0}, {AudioNOutput, 1}}

	// S/PDIF channel status bits, by their bit value in the digital converter control.
	spdifBits = []EnumMember{
		{"v", int(AC_DIG1_V)},
		{"vcfg", int(AC_DIG1_VCFG)},
		{"pre", int(AC_DIG1_EMPHASIS)},
		{"copy", int(AC_DIG1_COPYRIGHT)},
		{"pro", int(AC_DIG1_PROFESSIONAL)},
		{"l", int(AC_DIG1_LEVEL)},
	}
)

// label truncates a control label to the host label size.
func label(s string) string {
	if len(s) >= MaxLabelLen {
		return s[:MaxLabelLen-1]
	}

	return s
}

// catNames joins widget, source and suffix into a label, shortening the source
// name when the result would not fit.
func catNames(widget, src, suffix string) string {
	if len(widget)+len(src)+4 <= MaxLabelLen {
		return label(widget + "." + src + "." + suffix)
	}

	last2 := src
	if len(src) > 2 {
		last2 = src[len(src)-2:]
	}

	if len(src) > 4 {
		return label(widget + "." + src[:2] + last2 + "." + suffix)
	}

	return label(widget + "." + last2 + "." + suffix)
}

// mixerDelta returns the level delta for a range of n steps under the codec's policy.
func (c *Codec) mixerDelta(n uint32) int {
	if c.scale == ScaleMax255 {
		return mixerDelta(n)
	}

	return 1
}

// ampUnits describes one raw step of an amplifier.
func (c *Codec) ampUnits(a AmpCap) string {
	if c.scale == ScaleMax255 {
		return ""
	}

	return fmt.Sprintf("0.25x%ddB", a.StepSize()+1)
}

func (c *Codec) addItem(m MixerItem) {
	c.mixers = append(c.mixers, m)
}

func (c *Codec) addEnum(w *Widget, text string, class int, target Target, members []EnumMember) {
	c.addItem(MixerItem{
		Info: DevInfo{
			Label:   label(text),
			Type:    MixerEnum,
			Class:   class,
			Members: members,
		},
		Nid:    w.Nid,
		Target: target,
	})
}

func (c *Codec) addValue(w *Widget, text string, class int, target Target, channels int, a AmpCap) {
	c.addItem(MixerItem{
		Info: DevInfo{
			Label:    label(text),
			Type:     MixerValue,
			Class:    class,
			Channels: channels,
			Delta:    c.mixerDelta(a.NumSteps()),
			Units:    c.ampUnits(a),
		},
		Nid:    w.Nid,
		Target: target,
	})
}

// addClasses appends the five class items every table starts with.
func (c *Codec) addClasses() {
	for class, name := range classNames {
		c.addItem(MixerItem{
			Info: DevInfo{
				Label: name,
				Type:  MixerClass,
				Class: class,
			},
		})
	}
}

// mixerInit is the generic mixer builder.
func (c *Codec) mixerInit() error {
	c.mixers = nil
	c.addClasses()

	for _, w := range c.Widgets() {
		if w.Unconnected() {
			continue
		}

		c.addWidgetControls(w)
	}

	c.addModeControl(&c.DACs, ClassPlayback, TargetDAC)
	c.addModeControl(&c.ADCs, ClassRecord, TargetADC)

	c.fixIndexes()
	c.mixerDefault()

	c.log.Debug().Int("controls", len(c.mixers)).Msg("mixer built")

	return nil
}

// usableSources lists the connections of w that lead to a connected widget.
func (c *Codec) usableSources(w *Widget) []EnumMember {
	var members []EnumMember

	for j := range w.Connections {
		src := c.source(w, j)
		if src == nil || src.Unconnected() {
			continue
		}

		if len(members) >= MaxEnumMembers {
			break
		}

		members = append(members, EnumMember{Label: label(src.Name), Ord: j})
	}

	return members
}

// addWidgetControls emits the controls of one widget in their fixed order.
func (c *Codec) addWidgetControls(w *Widget) {
	// Selector.
	if w.Type != AC_WID_AUD_MIX && w.Type != AC_WID_POWER {
		if members := c.usableSources(w); len(members) >= 2 {
			class := ClassOutputs
			if w.Type == AC_WID_AUD_SEL {
				class = ClassInputs
			}

			c.addEnum(w, w.Name+"."+AudioNSource, class, To(TargetConnList), members)
		}
	}

	outClass := ClassInputs
	switch w.Type {
	case AC_WID_AUD_MIX:
		outClass = ClassMix
	case AC_WID_AUD_SEL, AC_WID_PIN:
		outClass = ClassOutputs
	}

	// Output amplifier.
	if w.HasOutAmp() && w.OutAmp.Mute() {
		c.addEnum(w, w.Name+"."+AudioNMute, outClass, To(TargetOutAmp), offOn)
	}

	if w.HasOutAmp() && w.OutAmp.NumSteps() > 0 {
		c.addValue(w, w.Name, outClass, To(TargetOutAmp), w.Channels(), w.OutAmp)
	}

	// Input amplifiers, one per source on mixers and selectors.
	perSource := w.Type == AC_WID_AUD_SEL || w.Type == AC_WID_AUD_MIX

	inClass := ClassInputs
	switch w.Type {
	case AC_WID_PIN:
		inClass = ClassOutputs
	case AC_WID_AUD_IN:
		inClass = ClassRecord
	case AC_WID_AUD_MIX:
		inClass = ClassMix
	}

	if w.HasInAmp() && w.InAmp.Mute() {
		if !perSource {
			c.addEnum(w, w.Name+"."+AudioNMute, inClass, InAmp(0), offOn)
		} else {
			for _, src := range c.usableSources(w) {
				name := c.Widget(w.Connections[src.Ord]).Name
				c.addEnum(w, catNames(w.Name, name, AudioNMute), inClass, InAmp(src.Ord), offOn)
			}
		}
	}

	if w.HasInAmp() && w.InAmp.NumSteps() > 0 {
		if !perSource {
			c.addValue(w, w.Name, inClass, InAmp(0), w.Channels(), w.InAmp)
		} else {
			for _, src := range c.usableSources(w) {
				name := c.Widget(w.Connections[src.Ord]).Name
				c.addValue(w, w.Name+"."+name, inClass, InAmp(src.Ord), w.Channels(), w.InAmp)
			}
		}
	}

	if w.Type == AC_WID_AUD_OUT && w.Digital() {
		c.addSPDIF(w)
	}

	if w.Type == AC_WID_PIN {
		if w.Pin.Cap.Output() && w.Pin.Cap.Input() {
			c.addEnum(w, w.Name+".dir", ClassOutputs, To(TargetPinDir), inputOut)
		}

		if w.Pin.Cap.Headphone() {
			c.addEnum(w, w.Name+".boost", ClassOutputs, To(TargetPinBoost), offOn)
		}

		if w.Pin.Cap.EAPD() {
			c.addEnum(w, w.Name+".eapd", ClassOutputs, To(TargetEAPD), offOn)
		}

		if w.Pin.Cap.Balanced() {
			c.addEnum(w, w.Name+".balance", ClassOutputs, To(TargetBalance), offOn)
		}
	}

	if w.LRSwap() {
		class := ClassInputs
		switch w.Type {
		case AC_WID_PIN:
			class = ClassOutputs
		case AC_WID_AUD_IN:
			class = ClassRecord
		}

		c.addEnum(w, w.Name+".lrswap", class, To(TargetLRSwap), offOn)
	}

	if w.Type == AC_WID_VOL_KNB && w.Knob.Delta() {
		c.addItem(MixerItem{
			Info: DevInfo{
				Label:    label(w.Name),
				Type:     MixerValue,
				Class:    ClassOutputs,
				Channels: 1,
				Delta:    c.mixerDelta(w.Knob.NumSteps()),
			},
			Nid:    w.Nid,
			Target: To(TargetVolume),
		})
	}
}

// addSPDIF appends the channel status bits and category code of a digital converter.
func (c *Codec) addSPDIF(w *Widget) {
	c.addItem(MixerItem{
		Info: DevInfo{
			Label:   label(w.Name + "." + AudioNSPDIF),
			Type:    MixerSet,
			Class:   ClassPlayback,
			Members: spdifBits,
		},
		Nid:    w.Nid,
		Target: To(TargetSPDIF),
	})

	c.addItem(MixerItem{
		Info: DevInfo{
			Label:    label(w.Name + "." + AudioNSPDIF + ".cc"),
			Type:     MixerValue,
			Class:    ClassPlayback,
			Channels: 1,
			Delta:    1,
		},
		Nid:    w.Nid,
		Target: To(TargetSPDIFCC),
	})
}

// addModeControl appends the group selection enum when there is more than one group.
// Members are labeled with the hexadecimal ids of the group's converters.
func (c *Codec) addModeControl(set *ConvGroupSet, class int, kind TargetKind) {
	if len(set.Groups) <= 1 {
		return
	}

	var members []EnumMember
	for i, g := range set.Groups {
		if i >= MaxEnumMembers {
			break
		}

		members = append(members, EnumMember{Label: label(g.String()), Ord: i})
	}

	var nid Nid
	if g := set.Current(); len(g) > 0 {
		nid = g[0]
	}

	c.addItem(MixerItem{
		Info: DevInfo{
			Label:   AudioNMode,
			Type:    MixerEnum,
			Class:   class,
			Members: members,
		},
		Nid:    nid,
		Target: To(kind),
	})
}

// fixIndexes renumbers the table densely and resets the prev/next links.
func (c *Codec) fixIndexes() {
	for i := range c.mixers {
		d := &c.mixers[i].Info
		d.Index = i
		if d.Prev == 0 {
			d.Prev = MixerLast
		}
		if d.Next == 0 {
			d.Next = MixerLast
		}
	}
}

// mixerDefault unmutes the amplifiers, turns bidirectional pins to output and
// sets every gain to the middle of its range.
func (c *Codec) mixerDefault() {
	for i := range c.mixers {
		m := &c.mixers[i]
		if !isAmp(m.Target) || m.Info.Type != MixerEnum {
			continue
		}

		c.applyDefault(m, &MixerCtrl{Dev: i, Type: MixerEnum, Ord: 0})
	}

	for i := range c.mixers {
		m := &c.mixers[i]
		if m.Target.Kind != TargetPinDir {
			continue
		}

		c.applyDefault(m, &MixerCtrl{Dev: i, Type: MixerEnum, Ord: 1})
	}

	for i := range c.mixers {
		m := &c.mixers[i]
		if !isAmp(m.Target) && m.Target.Kind != TargetVolume {
			continue
		}

		if m.Info.Type != MixerValue {
			continue
		}

		mid := c.midpoint(m.Nid, m.Target)
		mc := &MixerCtrl{Dev: i, Type: MixerValue, Channels: 1, Level: [2]uint8{mid, mid}}
		if w := c.Widget(m.Nid); m.Target.Kind != TargetVolume && w != nil && w.Stereo() {
			mc.Channels = 2
		}

		c.applyDefault(m, mc)
	}
}

func (c *Codec) applyDefault(m *MixerItem, mc *MixerCtrl) {
	if err := c.mixerSet(m.Nid, m.Target, mc); err != nil {
		c.log.Debug().Err(err).Str("control", m.Info.Label).Msg("default not applied")
	}
}

func isAmp(t Target) bool {
	return t.Kind == TargetInAmp || t.Kind == TargetOutAmp
}

// createVirtual adds "master", "dac" and "volume" aliases for the gains of the
// first DAC and ADC groups.
func (c *Codec) createVirtual() {
	var dac, adc Nid
	hasDAC := len(c.DACs.Groups) > 0 && len(c.DACs.Groups[0]) > 0
	hasADC := len(c.ADCs.Groups) > 0 && len(c.ADCs.Groups[0]) > 0
	if hasDAC {
		dac = c.DACs.Groups[0][0]
	}
	if hasADC {
		adc = c.ADCs.Groups[0][0]
	}

	mdac, madc := -1, -1
	for i, m := range c.mixers {
		if m.Info.Type != MixerValue || !isAmp(m.Target) {
			continue
		}

		if mdac < 0 && hasDAC && m.Nid == dac {
			mdac = i
		}

		if madc < 0 && hasADC && m.Nid == adc {
			madc = i
		}
	}

	// The DAC has no gain of its own; use the first widget mixing it that has one.
	if mdac < 0 && hasDAC {
	peers:
		for _, w := range c.Widgets() {
			if !ConvGroup(w.Connections).Contains(dac) {
				continue
			}

			for i, m := range c.mixers {
				if m.Info.Type == MixerValue && isAmp(m.Target) && m.Nid == w.Nid {
					mdac = i

					break peers
				}
			}
		}
	}

	if mdac >= 0 {
		c.addAlias(mdac, ClassOutputs, AudioNMaster)
		c.addAlias(mdac, ClassInputs, AudioNDAC)
	}

	if madc >= 0 {
		c.addAlias(madc, ClassRecord, AudioNVolume)
	}

	c.fixIndexes()
}

func (c *Codec) addAlias(src int, class int, name string) {
	m := c.mixers[src]
	m.Info.Class = class
	m.Info.Label = name
	m.Info.Prev, m.Info.Next = MixerLast, MixerLast
	c.addItem(m)
}

// pinSense programs every pin's direction from its default device and turns on EAPD.
func (c *Codec) pinSense() {
	for _, w := range c.Widgets() {
		if w.Type != AC_WID_PIN {
			continue
		}

		ctl := AC_PINCTL_IN_EN
		if !w.Pin.Cap.Input() && w.Pin.Cap.Output() {
			ctl = AC_PINCTL_OUT_EN
		}

		switch w.Pin.Config.Device() {
		case AC_JACK_LINE_OUT, AC_JACK_SPEAKER, AC_JACK_HP_OUT, AC_JACK_SPDIF_OUT, AC_JACK_DIG_OTHER_OUT:
			ctl = AC_PINCTL_OUT_EN
		case AC_JACK_CD, AC_JACK_LINE_IN:
			ctl = AC_PINCTL_IN_EN
		case AC_JACK_MIC_IN:
			ctl = AC_PINCTL_IN_EN | AC_PINCTL_VREF_80
		}

		if _, err := c.comresp(w.Nid, AC_VERB_SET_PIN_WIDGET_CONTROL, ctl); err != nil {
			c.log.Debug().Err(err).Str("pin", w.Name).Msg("pin control not set")
		}

		if !w.Pin.Cap.EAPD() {
			continue
		}

		resp, err := c.comresp(w.Nid, AC_VERB_GET_EAPD_BTLENABLE, 0)
		if err != nil {
			continue
		}

		if _, err := c.comresp(w.Nid, AC_VERB_SET_EAPD_BTLENABLE, resp&0xff|AC_EAPDBTL_EAPD); err != nil {
			c.log.Debug().Err(err).Str("pin", w.Name).Msg("eapd not set")
		}
	}
}

// mixerAutoinit is the generic builder followed by the virtual controls and pin setup.
func (c *Codec) mixerAutoinit() error {
	if err := c.mixerInit(); err != nil {
		return err
	}

	c.createVirtual()
	c.pinSense()

	return nil
}
