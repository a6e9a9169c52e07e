package hda

import (
	"fmt"
)

// Realtek ALC260.
//
// Fujitsu LOOX T70M/T wiring: internal speaker 0x10, front headphone 0x14, front mic 0x12.
const (
	alc260FujitsuID = 0x132610cf

	alc260EventHP = 0
	// Scratch slot holding the speaker mute requested by the user.
	alc260ExtraMaster = 0

	alc260Speaker Nid = 0x10
	alc260HP      Nid = 0x14
)

var alc260Items = []MixerItem{
	valueItem(AudioNMaster, ClassOutputs, 0x08, To(TargetOutAmp), 2),
	offOnItem(AudioNMaster+".mute", ClassOutputs, 0x0f, To(TargetOutAmp)),
	offOnItem(AudioNHeadphone+".mute", ClassOutputs, 0x10, To(TargetOutAmp)),
	offOnItem(AudioNHeadphone+".boost", ClassOutputs, 0x10, To(TargetPinBoost)),
	offOnItem(AudioNMono+".mute", ClassOutputs, 0x11, To(TargetOutAmp)),
	offOnItem("mic1.mute", ClassOutputs, 0x12, To(TargetOutAmp)),
	enumItem("mic1", ClassOutputs, 0x12, To(TargetPinDir), inputOut...),
	offOnItem("mic2.mute", ClassOutputs, 0x13, To(TargetOutAmp)),
	enumItem("mic2", ClassOutputs, 0x13, To(TargetPinDir), inputOut...),
	offOnItem("line1.mute", ClassOutputs, 0x14, To(TargetOutAmp)),
	enumItem("line1", ClassOutputs, 0x14, To(TargetPinDir), inputOut...),
	offOnItem("line2.mute", ClassOutputs, 0x15, To(TargetOutAmp)),
	enumItem("line2", ClassOutputs, 0x15, To(TargetPinDir), inputOut...),

	offOnItem(AudioNDAC+".mute", ClassInputs, 0x08, InAmp(0)),
	offOnItem("mic1.mute", ClassInputs, 0x07, InAmp(0)),
	valueItem("mic1", ClassInputs, 0x07, InAmp(0), 2),
	offOnItem("mic2.mute", ClassInputs, 0x07, InAmp(1)),
	valueItem("mic2", ClassInputs, 0x07, InAmp(1), 2),
	offOnItem("line1.mute", ClassInputs, 0x07, InAmp(2)),
	valueItem("line1", ClassInputs, 0x07, InAmp(2), 2),
	offOnItem("line2.mute", ClassInputs, 0x07, InAmp(3)),
	valueItem("line2", ClassInputs, 0x07, InAmp(3), 2),
	offOnItem(AudioNCD+".mute", ClassInputs, 0x07, InAmp(4)),
	valueItem(AudioNCD, ClassInputs, 0x07, InAmp(4), 2),
	offOnItem(AudioNSpeaker+".mute", ClassInputs, 0x07, InAmp(5)),
	valueItem(AudioNSpeaker, ClassInputs, 0x07, InAmp(5), 2),

	sourceItem("adc04.source", ClassRecord, 0x04,
		EnumMember{"mic1", 0}, EnumMember{"mic2", 1}, EnumMember{"line1", 2},
		EnumMember{"line2", 3}, EnumMember{AudioNCD, 4}),
	offOnItem("adc04.mute", ClassRecord, 0x04, InAmp(0)),
	valueItem("adc04", ClassRecord, 0x04, InAmp(0), 2),
	sourceItem("adc05.source", ClassRecord, 0x05,
		EnumMember{"mic1", 0}, EnumMember{"mic2", 1}, EnumMember{"line1", 2},
		EnumMember{"line2", 3}, EnumMember{AudioNCD, 4}, EnumMember{AudioNMixerOut, 5}),
	offOnItem("adc05.mute", ClassRecord, 0x05, InAmp(0)),
	valueItem("adc05", ClassRecord, 0x05, InAmp(0), 2),

	modeItem(ClassPlayback, TargetDAC, AudioNAnalog, AudioNDigital),
	modeItem(ClassRecord, TargetADC, "adc04", "adc05", AudioNDigital),
}

var alc260FujitsuItems = []MixerItem{
	valueItem(AudioNMaster, ClassOutputs, 0x08, To(TargetOutAmp), 2),
	offOnItem(AudioNMaster+".mute", ClassOutputs, 0x10, To(TargetOutAmp)),
	offOnItem(AudioNMaster+".boost", ClassOutputs, 0x10, To(TargetPinBoost)),
	offOnItem(AudioNHeadphone+".mute", ClassOutputs, 0x14, To(TargetOutAmp)),
	offOnItem(AudioNHeadphone+".boost", ClassOutputs, 0x14, To(TargetPinBoost)),

	offOnItem(AudioNDAC+".mute", ClassInputs, 0x08, InAmp(0)),
	offOnItem(AudioNMicrophone+".mute", ClassInputs, 0x07, InAmp(0)),
	valueItem(AudioNMicrophone, ClassInputs, 0x07, InAmp(0), 2),
	offOnItem(AudioNCD+".mute", ClassInputs, 0x07, InAmp(4)),
	valueItem(AudioNCD, ClassInputs, 0x07, InAmp(4), 2),
	offOnItem(AudioNSpeaker+".mute", ClassInputs, 0x07, InAmp(5)),
	valueItem(AudioNSpeaker, ClassInputs, 0x07, InAmp(5), 2),

	sourceItem("adc04.source", ClassRecord, 0x04,
		EnumMember{AudioNMicrophone, 0}, EnumMember{AudioNCD, 4}),
	offOnItem("adc04.mute", ClassRecord, 0x04, InAmp(0)),
	valueItem("adc04", ClassRecord, 0x04, InAmp(0), 2),
	sourceItem("adc05.source", ClassRecord, 0x05,
		EnumMember{AudioNMicrophone, 0}, EnumMember{AudioNCD, 4}, EnumMember{AudioNMixerOut, 5}),
	offOnItem("adc05.mute", ClassRecord, 0x05, InAmp(0)),
	valueItem("adc05", ClassRecord, 0x05, InAmp(0), 2),

	modeItem(ClassPlayback, TargetDAC, AudioNAnalog, AudioNDigital),
	modeItem(ClassRecord, TargetADC, "adc04", "adc05", AudioNDigital),
}

type alc260Ops struct{ genericOps }

func (alc260Ops) InitDACGroup(c *Codec) error {
	return c.initFixedGroups(
		[]ConvGroup{{0x02}, {0x03}},
		[]ConvGroup{{0x04}, {0x05}, {0x06}},
	)
}

func (alc260Ops) MixerInit(c *Codec) error {
	fujitsu := c.SubsystemID == alc260FujitsuID
	if fujitsu {
		c.installTable(alc260FujitsuItems)
	} else {
		c.installTable(alc260Items)
	}

	for _, nid := range []Nid{0x0f, 0x10} {
		c.setEnum(nid, To(TargetPinDir), 1)
	}
	for _, nid := range []Nid{0x12, 0x13, 0x14, 0x15} {
		c.setEnum(nid, To(TargetPinDir), 0)
	}
	for _, nid := range []Nid{0x08, 0x09, 0x0a} {
		c.setEnum(nid, InAmp(0), 0)
		c.setEnum(nid, InAmp(1), 0)
	}

	if !fujitsu {
		return nil
	}

	// Line1 is the front headphone jack on these machines.
	c.setEnum(alc260HP, To(TargetPinDir), 1)
	c.setEnum(0x05, To(TargetConnList), 4)

	if err := c.enableUnsol(alc260HP, alc260EventHP); err != nil {
		return fmt.Errorf("failed to enable headphone events: %w", err)
	}
	c.extra[alc260ExtraMaster] = 0

	return c.alc260Speaker()
}

// alc260Speaker mutes the internal speaker while headphones are present and
// otherwise restores the mute state last requested by the user.
func (c *Codec) alc260Speaker() error {
	hp, err := c.pinPresent(alc260HP)
	if err != nil {
		return err
	}

	return c.setMute(alc260Speaker, hp || c.extra[alc260ExtraMaster] != 0)
}

func (alc260Ops) GetPort(c *Codec, mc *MixerCtrl) error {
	m, err := c.lookupPort(mc)
	if err != nil || m == nil {
		return err
	}

	if c.SubsystemID == alc260FujitsuID && m.Nid == alc260Speaker && m.Target.Kind == TargetOutAmp {
		mc.Ord = int(c.extra[alc260ExtraMaster])

		return nil
	}

	return c.mixerGet(m.Nid, m.Target, mc)
}

func (alc260Ops) SetPort(c *Codec, mc *MixerCtrl) error {
	m, err := c.lookupPort(mc)
	if err != nil || m == nil {
		return err
	}

	switch {
	case m.Nid == 0x08 && m.Target.Kind == TargetOutAmp:
		// The master gain drives both line DACs and the averaged mono output.
		if err := c.mixerSet(m.Nid, m.Target, mc); err != nil {
			return err
		}

		if err := c.mixerSet(0x09, m.Target, mc); err != nil {
			return err
		}

		mono := *mc
		if mc.Channels == 2 {
			mono.Channels = 1
			mono.Level[0] = uint8((int(mc.Level[0]) + int(mc.Level[1])) / 2)
		}

		return c.mixerSet(0x0a, m.Target, &mono)

	case m.Nid == 0x08 && m.Target == InAmp(0):
		for _, nid := range []Nid{0x08, 0x09, 0x0a} {
			if err := c.mixerSet(nid, m.Target, mc); err != nil {
				return err
			}
		}

		return nil

	case c.SubsystemID == alc260FujitsuID && m.Nid == alc260Speaker && m.Target.Kind == TargetOutAmp:
		if err := checkOrd(mc); err != nil {
			return err
		}

		c.extra[alc260ExtraMaster] = uint32(mc.Ord)

		return c.alc260Speaker()
	}

	return c.mixerSet(m.Nid, m.Target, mc)
}

func (alc260Ops) UnsolEvent(c *Codec, tag int) error {
	if c.SubsystemID != alc260FujitsuID {
		return nil
	}

	if tag != alc260EventHP {
		c.log.Warn().Int("tag", tag).Msg("unknown unsolicited tag")

		return nil
	}

	return c.alc260Speaker()
}

// Realtek ALC262 only renames its master mixer.
type alc262Ops struct{ genericOps }

func (alc262Ops) InitWidget(c *Codec, w *Widget) error {
	w.Name = pinName(w)
	renameWidgets(w, map[Nid]string{0x0c: AudioNMaster})

	return nil
}

// Realtek ALC268, 4ch in and out.
type alc268Ops struct{ autoinitOps }

func (alc268Ops) InitDACGroup(c *Codec) error {
	return c.initFixedGroups(
		[]ConvGroup{{0x02, 0x03}},
		[]ConvGroup{{0x08, 0x07}},
	)
}

// Realtek ALC662 and ALC663, 6ch out and 4ch in.
type alc662Ops struct{ autoinitOps }

func (alc662Ops) InitDACGroup(c *Codec) error {
	return c.initFixedGroups(
		[]ConvGroup{{0x02, 0x03, 0x04}},
		[]ConvGroup{{0x09, 0x08}},
	)
}
