package hda

import (
	"fmt"
)

// Unsolicited tags shared by the Analog Devices codecs.
const (
	ad198xEventHP      = 1
	ad198xEventSpeaker = 2
)

// AD1983: speaker jack 0x05, headphone 0x06, internal mono 0x07.
var ad1983Jacks = headphoneSwitch{hp: 0x06, speaker: 0x05, mono: 0x07}

var ad1983Items = []MixerItem{
	sourceItem(AudioNDigital+"."+AudioNSource, ClassOutputs, 0x02,
		EnumMember{"os", 0}, EnumMember{"adc", 1}),

	sourceItem(AudioNSpeaker+"."+AudioNSource, ClassOutputs, 0x05,
		EnumMember{AudioNDAC, 0}, EnumMember{AudioNMixerOut, 1}),
	offOnItem(AudioNSpeaker+"."+AudioNMute, ClassOutputs, 0x05, To(TargetOutAmp)),
	valueItem(AudioNSpeaker, ClassOutputs, 0x05, To(TargetOutAmp), 2),

	sourceItem(AudioNHeadphone+".src", ClassOutputs, 0x06,
		EnumMember{AudioNDAC, 0}, EnumMember{AudioNMixerOut, 1}),
	offOnItem(AudioNHeadphone+"."+AudioNMute, ClassOutputs, 0x06, To(TargetOutAmp)),
	valueItem(AudioNHeadphone, ClassOutputs, 0x06, To(TargetOutAmp), 2),
	offOnItem(AudioNHeadphone+".boost", ClassOutputs, 0x06, To(TargetPinBoost)),

	offOnItem(AudioNMono+"."+AudioNMute, ClassOutputs, 0x07, To(TargetOutAmp)),
	valueItem(AudioNMono, ClassOutputs, 0x07, To(TargetOutAmp), 1),
	sourceItem(AudioNMono+"."+AudioNSource, ClassOutputs, 0x0b,
		EnumMember{AudioNDAC, 0}, EnumMember{AudioNMicrophone, 1},
		EnumMember{AudioNLine, 2}, EnumMember{AudioNMixerOut, 3}),

	offOnItem(AudioNMicrophone+".pre."+AudioNMute, ClassInputs, 0x0c, To(TargetOutAmp)),
	valueItem(AudioNMicrophone+".pre", ClassInputs, 0x0c, To(TargetOutAmp), 2),
	sourceItem(AudioNMicrophone+"."+AudioNSource, ClassInputs, 0x0c,
		EnumMember{AudioNMicrophone, 0}, EnumMember{AudioNLine, 1}),
	sourceItem(AudioNLine+"."+AudioNSource, ClassInputs, 0x0d,
		EnumMember{AudioNLine, 0}, EnumMember{AudioNMicrophone, 1}),

	offOnItem("beep."+AudioNMute, ClassInputs, 0x10, To(TargetOutAmp)),
	valueItem("beep", ClassInputs, 0x10, To(TargetOutAmp), 1),
	offOnItem(AudioNDAC+"."+AudioNMute, ClassInputs, 0x11, To(TargetOutAmp)),
	valueItem(AudioNDAC, ClassInputs, 0x11, To(TargetOutAmp), 2),
	offOnItem(AudioNMicrophone+"."+AudioNMute, ClassInputs, 0x12, To(TargetOutAmp)),
	valueItem(AudioNMicrophone, ClassInputs, 0x12, To(TargetOutAmp), 2),
	offOnItem(AudioNLine+"."+AudioNMute, ClassInputs, 0x13, To(TargetOutAmp)),
	valueItem(AudioNLine, ClassInputs, 0x13, To(TargetOutAmp), 2),

	sourceItem(AudioNSource, ClassRecord, 0x14,
		EnumMember{AudioNMicrophone, 0}, EnumMember{AudioNLine, 1},
		EnumMember{AudioNMixerOut, 2}, EnumMember{AudioNMono, 3}),
	offOnItem(AudioNMute, ClassRecord, 0x14, To(TargetOutAmp)),
	valueItem(AudioNVolume, ClassRecord, 0x14, To(TargetOutAmp), 2),

	modeItem(ClassPlayback, TargetDAC, AudioNAnalog, AudioNDigital),
}

type ad1983Ops struct{ genericOps }

func (ad1983Ops) MixerInit(c *Codec) error {
	c.installTable(ad1983Items)

	// Route every output through the mixer.
	c.setEnum(0x05, To(TargetConnList), 1)
	c.setEnum(0x06, To(TargetConnList), 1)
	c.setEnum(0x0b, To(TargetConnList), 3)

	return c.registerJacks(ad1983Jacks)
}

func (ad1983Ops) GetPort(c *Codec, mc *MixerCtrl) error { return ad1983Jacks.getPort(c, mc) }

func (ad1983Ops) SetPort(c *Codec, mc *MixerCtrl) error { return ad1983Jacks.setPort(c, mc) }

func (ad1983Ops) UnsolEvent(c *Codec, tag int) error {
	return c.jackEvent(ad1983Jacks, tag)
}

// registerJacks enables presence events on both jacks and applies the current state.
func (c *Codec) registerJacks(s headphoneSwitch) error {
	if err := c.enableUnsol(s.speaker, ad198xEventSpeaker); err != nil {
		return fmt.Errorf("failed to enable speaker events: %w", err)
	}

	if err := c.enableUnsol(s.hp, ad198xEventHP); err != nil {
		return fmt.Errorf("failed to enable headphone events: %w", err)
	}

	return s.update(c)
}

func (c *Codec) jackEvent(s headphoneSwitch, tag int) error {
	switch tag {
	case ad198xEventHP, ad198xEventSpeaker:
		return s.update(c)
	default:
		c.log.Warn().Int("tag", tag).Msg("unknown unsolicited tag")

		return nil
	}
}

// AD1984 and AD1984A.
const (
	ad1984DellOptiplex755  = 0x02111028
	ad1984aDellOptiplex760 = 0x027f1028
)

// Dell desktops: headphone 0x11, speaker jack 0x12, internal mono 0x13.
var ad1984DellJacks = headphoneSwitch{hp: 0x11, speaker: 0x12, mono: 0x13}

var ad1984Names = map[Nid]string{
	0x07: "hp",
	0x0a: "spkr",
	0x0b: AudioNAux,
	0x0c: "adc08",
	0x0d: "adc09",
	0x0e: AudioNMono + "sel",
	0x0f: AudioNAux + "sel",
	0x10: "beep",
	0x1e: AudioNMono,
	0x22: "hpsel",
	0x23: "docksel",
	0x24: "dock",
	0x25: "dock.pre",
}

type ad1984Ops struct{ autoinitOps }

func (ad1984Ops) InitDACGroup(c *Codec) error {
	return c.initFixedGroups(
		[]ConvGroup{{0x04, 0x03}, {0x02}},
		[]ConvGroup{{0x08, 0x09}, {0x06}, {0x05}},
	)
}

func (ad1984Ops) InitWidget(c *Codec, w *Widget) error {
	w.Name = pinName(w)
	renameWidgets(w, ad1984Names)

	return nil
}

func (ad1984Ops) MixerInit(c *Codec) error {
	if err := c.mixerAutoinit(); err != nil {
		return err
	}

	if !ad1984Dell(c.SubsystemID) {
		return nil
	}

	return c.registerJacks(ad1984DellJacks)
}

func (ad1984Ops) GetPort(c *Codec, mc *MixerCtrl) error {
	if !ad1984Dell(c.SubsystemID) {
		return c.getPort(mc)
	}

	return ad1984DellJacks.getPort(c, mc)
}

func (ad1984Ops) SetPort(c *Codec, mc *MixerCtrl) error {
	if !ad1984Dell(c.SubsystemID) {
		return c.setPort(mc)
	}

	return ad1984DellJacks.setPort(c, mc)
}

func (ad1984Ops) UnsolEvent(c *Codec, tag int) error {
	if !ad1984Dell(c.SubsystemID) {
		return nil
	}

	return c.jackEvent(ad1984DellJacks, tag)
}

func ad1984Dell(subid uint32) bool {
	return subid == ad1984DellOptiplex755 || subid == ad1984aDellOptiplex760
}
