package hda

import (
	"fmt"
)

// Ops is the set of codec operations a chip family can override.
// genericOps implements all of them; families embed it and replace what differs.
type Ops interface {
	InitDACGroup(c *Codec) error
	MixerInit(c *Codec) error
	MixerDelete(c *Codec) error
	GetPort(c *Codec, mc *MixerCtrl) error
	SetPort(c *Codec, mc *MixerCtrl) error
	InitWidget(c *Codec, w *Widget) error
	UnsolEvent(c *Codec, tag int) error
}

type genericOps struct{}

func (genericOps) InitDACGroup(c *Codec) error { return c.initDACGroup() }

func (genericOps) MixerInit(c *Codec) error { return c.mixerInit() }

func (genericOps) MixerDelete(c *Codec) error {
	c.mixers = nil

	return nil
}

func (genericOps) GetPort(c *Codec, mc *MixerCtrl) error { return c.getPort(mc) }

func (genericOps) SetPort(c *Codec, mc *MixerCtrl) error { return c.setPort(mc) }

func (genericOps) InitWidget(c *Codec, w *Widget) error {
	w.Name = pinName(w)

	return nil
}

func (genericOps) UnsolEvent(c *Codec, tag int) error { return nil }

// autoinitOps builds the generic mixer with virtual controls and programs the pins.
type autoinitOps struct{ genericOps }

func (autoinitOps) MixerInit(c *Codec) error { return c.mixerAutoinit() }

// Family is a group of codecs that share the same overrides.
type Family int

const (
	FamilyGeneric Family = iota
	FamilyATIHDMI
	FamilyALC260
	FamilyALC262
	FamilyALC268
	FamilyALC269
	FamilyALC662
	FamilyAD1983
	FamilyAD1984
	FamilySTAC9200
	FamilySTAC9221
)

// String returns a human-readable representation of the Family.
func (f Family) String() string {
	switch f {
	case FamilyGeneric:
		return "generic"
	case FamilyATIHDMI:
		return "ati-hdmi"
	case FamilyALC260:
		return "alc260"
	case FamilyALC262:
		return "alc262"
	case FamilyALC268:
		return "alc268"
	case FamilyALC269:
		return "alc269"
	case FamilyALC662:
		return "alc662"
	case FamilyAD1983:
		return "ad1983"
	case FamilyAD1984:
		return "ad1984"
	case FamilySTAC9200:
		return "stac9200"
	case FamilySTAC9221:
		return "stac9221"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ops returns the operations of the family.
func (f Family) ops() Ops {
	switch f {
	case FamilyATIHDMI:
		return atiHDMIOps{}
	case FamilyALC260:
		return alc260Ops{}
	case FamilyALC262:
		return alc262Ops{}
	case FamilyALC268:
		return alc268Ops{}
	case FamilyALC269:
		return autoinitOps{}
	case FamilyALC662:
		return alc662Ops{}
	case FamilyAD1983:
		return ad1983Ops{}
	case FamilyAD1984:
		return ad1984Ops{}
	case FamilySTAC9200:
		return stac9200Ops{}
	case FamilySTAC9221:
		return stac9221Ops{}
	default:
		return genericOps{}
	}
}

type codecEntry struct {
	name   string
	family Family
	extra  int
}

// Known codecs by vendor id.
var codecTable = map[uint32]codecEntry{
	0x10027919: {"ATI RS600 HDMI", FamilyATIHDMI, 0},
	0x1002791a: {"ATI RS690/780 HDMI", FamilyATIHDMI, 0},
	0x1002793c: {"ATI RS600 HDMI", FamilyATIHDMI, 0},
	0x1002aa01: {"ATI R6xx HDMI", FamilyATIHDMI, 0},

	0x10ec0260: {"Realtek ALC260", FamilyALC260, 1},
	0x10ec0262: {"Realtek ALC262", FamilyALC262, 0},
	0x10ec0268: {"Realtek ALC268", FamilyALC268, 0},
	0x10ec0269: {"Realtek ALC269", FamilyALC269, 0},
	0x10ec0272: {"Realtek ALC272", FamilyALC269, 0},
	0x10ec0662: {"Realtek ALC662", FamilyALC662, 0},
	0x10ec0663: {"Realtek ALC663", FamilyALC662, 0},
	0x10ec0880: {"Realtek ALC880", FamilyGeneric, 0},
	0x10ec0882: {"Realtek ALC882", FamilyGeneric, 0},
	0x10ec0883: {"Realtek ALC883", FamilyGeneric, 0},
	0x10ec0885: {"Realtek ALC885", FamilyALC269, 0},
	0x10ec0888: {"Realtek ALC888", FamilyGeneric, 0},

	0x11d41981: {"Analog Devices AD1981HD", FamilyGeneric, 0},
	0x11d41983: {"Analog Devices AD1983", FamilyAD1983, hpExtraSize},
	0x11d41984: {"Analog Devices AD1984", FamilyAD1984, hpExtraSize},
	0x11d4194a: {"Analog Devices AD1984A", FamilyAD1984, hpExtraSize},
	0x11d41986: {"Analog Devices AD1986A", FamilyGeneric, 0},
	0x11d4198b: {"Analog Devices AD1988B", FamilyGeneric, 0},

	0x434d4980: {"CMedia CMI9880", FamilyGeneric, 0},

	0x83847690: {"Sigmatel STAC9200", FamilySTAC9200, 0},
	0x83847691: {"Sigmatel STAC9200D", FamilySTAC9200, 0},
	0x83847680: {"Sigmatel STAC9221", FamilySTAC9221, 0},
}

// Vendor names for codecs missing from codecTable.
var vendorNames = map[uint16]string{
	0x1002: "ATI",
	0x1013: "Cirrus Logic",
	0x10de: "NVIDIA",
	0x10ec: "Realtek",
	0x1106: "VIA",
	0x111d: "IDT",
	0x11c1: "LSI",
	0x11d4: "Analog Devices",
	0x13f6: "C-Media",
	0x14f1: "Conexant",
	0x17e8: "Chrontel",
	0x434d: "C-Media",
	0x8086: "Intel",
	0x8384: "Sigmatel",
}

// lookupCodec returns the table entry for a vendor id, falling back to the generic family.
func lookupCodec(vid uint32) codecEntry {
	if e, ok := codecTable[vid]; ok {
		return e
	}

	name := fmt.Sprintf("0x%04x", vid>>16)
	if v, ok := vendorNames[uint16(vid>>16)]; ok {
		name = v
	}

	return codecEntry{
		name:   fmt.Sprintf("%s/0x%04x", name, vid&0xffff),
		family: FamilyGeneric,
	}
}

// CodecName returns the marketing name of a codec vendor id.
func CodecName(vid uint32) string {
	return lookupCodec(vid).name
}

// CodecFamily returns the override family selected for a codec vendor id.
func CodecFamily(vid uint32) Family {
	return lookupCodec(vid).family
}

// Static table helpers.

func classItem(class int) MixerItem {
	return MixerItem{Info: DevInfo{Label: classNames[class], Type: MixerClass, Class: class}}
}

func enumItem(text string, class int, nid Nid, target Target, members ...EnumMember) MixerItem {
	return MixerItem{
		Info:   DevInfo{Label: text, Type: MixerEnum, Class: class, Members: members},
		Nid:    nid,
		Target: target,
	}
}

func offOnItem(text string, class int, nid Nid, target Target) MixerItem {
	return enumItem(text, class, nid, target, offOn...)
}

// valueItem is a ranged control; installTable fills in its delta from the widget.
func valueItem(text string, class int, nid Nid, target Target, channels int) MixerItem {
	return MixerItem{
		Info:   DevInfo{Label: text, Type: MixerValue, Class: class, Channels: channels},
		Nid:    nid,
		Target: target,
	}
}

// installTable replaces the mixer with a fixed table, renumbers it and applies the defaults.
func (c *Codec) installTable(items []MixerItem) {
	c.mixers = make([]MixerItem, 0, len(items)+len(classNames))
	for class := range classNames {
		c.mixers = append(c.mixers, classItem(class))
	}

	for _, m := range items {
		m.Info.Members = append([]EnumMember(nil), m.Info.Members...)
		if m.Info.Type == MixerValue {
			m.Info.Delta = c.mixerDelta(c.deviceMax(m.Nid, m.Target))
		}
		c.mixers = append(c.mixers, m)
	}

	c.fixIndexes()
	c.mixerDefault()
}

// renameWidgets applies a fixed nid to name map.
func renameWidgets(w *Widget, names map[Nid]string) {
	if name, ok := names[w.Nid]; ok {
		w.Name = name
	}
}

func modeItem(class int, kind TargetKind, members ...string) MixerItem {
	m := MixerItem{
		Info:   DevInfo{Label: AudioNMode, Type: MixerEnum, Class: class},
		Target: To(kind),
	}
	for i, name := range members {
		m.Info.Members = append(m.Info.Members, EnumMember{Label: name, Ord: i})
	}

	return m
}

// sourceItem is a connection select whose members name the connection indices.
func sourceItem(text string, class int, nid Nid, members ...EnumMember) MixerItem {
	return enumItem(text, class, nid, To(TargetConnList), members...)
}

// setMute pushes a mute state to an output amplifier through the dispatcher.
func (c *Codec) setMute(nid Nid, muted bool) error {
	return c.mixerSet(nid, To(TargetOutAmp), &MixerCtrl{Dev: -1, Type: MixerEnum, Ord: boolOrd(muted)})
}

// setEnum writes an ordinal outside of the mixer table. Failures are logged.
func (c *Codec) setEnum(nid Nid, target Target, ord int) {
	if err := c.mixerSet(nid, target, &MixerCtrl{Dev: -1, Type: MixerEnum, Ord: ord}); err != nil {
		c.log.Debug().Err(err).Stringer("nid", nid).Stringer("target", target).Msg("setup write failed")
	}
}

// headphoneSwitch silences the speaker outputs while headphones are plugged in.
// The mute state requested by the user for each output is kept in the codec's
// extra area and combined with the jack state on every update.
type headphoneSwitch struct {
	hp      Nid
	speaker Nid
	// mono is an internal output muted while either jack is present. Zero if absent.
	mono Nid
}

// Slots of the user mute states in Codec.extra.
const (
	hpExtraHP = iota
	hpExtraSpeaker
	hpExtraMono
	hpExtraSize
)

// slot returns the extra slot holding the user mute of the output amplifier
// addressed by m, or -1 if m is not one of the switched mutes.
func (s headphoneSwitch) slot(m *MixerItem) int {
	if m.Target.Kind != TargetOutAmp || m.Info.Type != MixerEnum {
		return -1
	}

	switch {
	case m.Nid == s.hp:
		return hpExtraHP
	case m.Nid == s.speaker:
		return hpExtraSpeaker
	case m.Nid == s.mono && s.mono != 0:
		return hpExtraMono
	default:
		return -1
	}
}

// getPort reports the user mute state of the switched outputs.
func (s headphoneSwitch) getPort(c *Codec, mc *MixerCtrl) error {
	m, err := c.lookupPort(mc)
	if err != nil || m == nil {
		return err
	}

	if i := s.slot(m); i >= 0 {
		mc.Ord = int(c.extra[i])

		return nil
	}

	return c.mixerGet(m.Nid, m.Target, mc)
}

// setPort records user mutes of the switched outputs and applies them on top of the jack state.
func (s headphoneSwitch) setPort(c *Codec, mc *MixerCtrl) error {
	m, err := c.lookupPort(mc)
	if err != nil || m == nil {
		return err
	}

	i := s.slot(m)
	if i < 0 {
		return c.mixerSet(m.Nid, m.Target, mc)
	}

	if err := checkOrd(mc); err != nil {
		return err
	}

	c.extra[i] = uint32(mc.Ord)

	return s.update(c)
}

// update derives every mute state from the current presence bits and the user
// mutes. Calling it repeatedly with unchanged jacks leaves the codec unchanged.
func (s headphoneSwitch) update(c *Codec) error {
	hp, err := c.pinPresent(s.hp)
	if err != nil {
		return err
	}

	if err := c.setMute(s.hp, c.extra[hpExtraHP] != 0); err != nil {
		return err
	}

	if err := c.setMute(s.speaker, hp || c.extra[hpExtraSpeaker] != 0); err != nil {
		return err
	}

	if s.mono == 0 {
		return nil
	}

	spk, err := c.pinPresent(s.speaker)
	if err != nil {
		return err
	}

	c.log.Debug().Bool("hp", hp).Bool("speaker", spk).Msg("jack state")

	return c.setMute(s.mono, hp || spk || c.extra[hpExtraMono] != 0)
}

// atiHDMIOps exposes the single digital converter as the only group.
type atiHDMIOps struct{ genericOps }

func (atiHDMIOps) InitDACGroup(c *Codec) error {
	return c.initFixedGroups([]ConvGroup{{0x02}}, nil)
}
