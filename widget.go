package hda

import (
	"fmt"
)

// AmpCap is an amplifier capabilities word (AC_PAR_AMP_IN_CAP or AC_PAR_AMP_OUT_CAP).
type AmpCap uint32

// Mute reports whether the amplifier can be muted.
func (a AmpCap) Mute() bool {
	return uint32(a)&AC_AMPCAP_MUTE != 0
}

// NumSteps returns the highest gain step. Zero means the amplifier has no gain control.
func (a AmpCap) NumSteps() uint32 {
	return (uint32(a) & AC_AMPCAP_NUM_STEPS) >> AC_AMPCAP_STEPS_SHIFT
}

// StepSize returns the step size in 0.25dB units minus one.
func (a AmpCap) StepSize() uint32 {
	return (uint32(a) & AC_AMPCAP_STEP_SIZE) >> AC_AMPCAP_SIZE_SHIFT
}

// Offset returns the step that corresponds to 0dB.
func (a AmpCap) Offset() uint32 {
	return uint32(a) & AC_AMPCAP_OFFSET
}

// PinCap is a pin capabilities word (AC_PAR_PIN_CAP).
type PinCap uint32

func (p PinCap) has(bit uint32) bool {
	return uint32(p)&bit != 0
}

// Input reports whether the pin can be an input.
func (p PinCap) Input() bool { return p.has(AC_PINCAP_IN) }

// Output reports whether the pin can be an output.
func (p PinCap) Output() bool { return p.has(AC_PINCAP_OUT) }

// Headphone reports whether the pin has a headphone amplifier.
func (p PinCap) Headphone() bool { return p.has(AC_PINCAP_HP_DRV) }

// EAPD reports whether the pin has an external amplifier power down control.
func (p PinCap) EAPD() bool { return p.has(AC_PINCAP_EAPD) }

// Balanced reports whether the pin supports balanced I/O.
func (p PinCap) Balanced() bool { return p.has(AC_PINCAP_BALANCE) }

// PresenceDetect reports whether the pin can sense jack presence.
func (p PinCap) PresenceDetect() bool { return p.has(AC_PINCAP_PRES_DETECT) }

// PinConfig is a pin configuration default word (AC_VERB_GET_CONFIG_DEFAULT).
type PinConfig uint32

// Sequence returns the position of the pin inside its association.
func (c PinConfig) Sequence() int {
	return int(uint32(c) & AC_DEFCFG_SEQUENCE)
}

// Association returns the association the pin belongs to.
func (c PinConfig) Association() int {
	return int((uint32(c) & AC_DEFCFG_DEF_ASSOC) >> AC_DEFCFG_ASSOC_SHIFT)
}

// Color returns the jack color.
func (c PinConfig) Color() int {
	return int((uint32(c) & AC_DEFCFG_COLOR) >> AC_DEFCFG_COLOR_SHIFT)
}

// Device returns the default device type.
func (c PinConfig) Device() int {
	return int((uint32(c) & AC_DEFCFG_DEVICE) >> AC_DEFCFG_DEVICE_SHIFT)
}

// Location returns the 6-bit location field.
func (c PinConfig) Location() int {
	return int((uint32(c) & AC_DEFCFG_LOCATION) >> AC_DEFCFG_LOCATION_SHIFT)
}

// Connectivity returns the port connectivity (AC_JACK_PORT_*).
func (c PinConfig) Connectivity() uint32 {
	return (uint32(c) & AC_DEFCFG_PORT_CONN) >> AC_DEFCFG_PORT_CONN_SHIFT
}

// Default device types.
const (
	AC_JACK_LINE_OUT = iota
	AC_JACK_SPEAKER
	AC_JACK_HP_OUT
	AC_JACK_CD
	AC_JACK_SPDIF_OUT
	AC_JACK_DIG_OTHER_OUT
	AC_JACK_MODEM_LINE_SIDE
	AC_JACK_MODEM_HAND_SIDE
	AC_JACK_LINE_IN
	AC_JACK_AUX
	AC_JACK_MIC_IN
	AC_JACK_TELEPHONY
	AC_JACK_SPDIF_IN
	AC_JACK_DIG_OTHER_IN
	AC_JACK_OTHER = 0xf
)

var deviceNames = [...]string{
	"lineout", "spkr", "hp", "cd", "spdifout", "digout", "modemline", "modemhset",
	"linein", "aux", "mic", "telephony", "spdifin", "digin", "reserved", "unused",
}

var colorNames = [...]string{
	"unknown", "black", "gray", "blue", "green", "red", "orange", "yellow",
	"purple", "pink", "col0a", "col0b", "col0c", "col0d", "white", "other",
}

// PinInfo holds the pin-complex specific capabilities.
type PinInfo struct {
	Cap    PinCap
	Config PinConfig
}

// KnobCap is a volume knob capabilities word (AC_PAR_VOL_KNB_CAP).
type KnobCap uint32

// Delta reports whether the knob can be driven directly.
func (k KnobCap) Delta() bool {
	return uint32(k)&AC_KNBCAP_DELTA != 0
}

// NumSteps returns the number of knob steps.
func (k KnobCap) NumSteps() uint32 {
	return uint32(k) & AC_KNBCAP_NUM_STEPS
}

// Widget is one node of the codec's audio function group.
type Widget struct {
	Nid         Nid
	Type        WidgetType
	Caps        uint32
	InAmp       AmpCap
	OutAmp      AmpCap
	Pin         PinInfo
	Knob        KnobCap
	BitsRates   uint32
	Connections []Nid
	Selected    int
	Name        string

	enabled bool
}

// Enabled reports whether the widget was discovered and belongs to the audio function group.
func (w *Widget) Enabled() bool {
	return w != nil && w.enabled
}

// Stereo reports whether the widget carries two channels.
func (w *Widget) Stereo() bool {
	return w.Caps&AC_WCAP_STEREO != 0
}

// Channels returns 2 for stereo widgets and 1 otherwise.
func (w *Widget) Channels() int {
	if w.Stereo() {
		return 2
	}

	return 1
}

// HasInAmp reports whether the widget has input amplifiers.
func (w *Widget) HasInAmp() bool {
	return w.Caps&AC_WCAP_IN_AMP != 0
}

// HasOutAmp reports whether the widget has an output amplifier.
func (w *Widget) HasOutAmp() bool {
	return w.Caps&AC_WCAP_OUT_AMP != 0
}

// Digital reports whether the widget is a digital converter or pin.
func (w *Widget) Digital() bool {
	return w.Caps&AC_WCAP_DIGITAL != 0
}

// LRSwap reports whether the widget can swap the left and right channels.
func (w *Widget) LRSwap() bool {
	return w.Caps&AC_WCAP_LR_SWAP != 0
}

// Unsolicited reports whether the widget can send unsolicited responses.
func (w *Widget) Unsolicited() bool {
	return w.Caps&AC_WCAP_UNSOL_CAP != 0
}

// Unconnected reports whether the widget is a pin without a physical jack.
func (w *Widget) Unconnected() bool {
	return w.Type == AC_WID_PIN && w.Pin.Config.Connectivity() == AC_JACK_PORT_NONE
}

// String returns a human-readable representation of the Widget.
func (w *Widget) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Nid, w.Name, w.Type)
}

// defaultWidgetName returns the name a widget gets at discovery.
func defaultWidgetName(w *Widget) string {
	switch w.Type {
	case AC_WID_AUD_OUT:
		return fmt.Sprintf("dac%s", w.Nid)
	case AC_WID_AUD_IN:
		return fmt.Sprintf("adc%s", w.Nid)
	case AC_WID_AUD_MIX:
		return fmt.Sprintf("mix%s", w.Nid)
	case AC_WID_AUD_SEL:
		return fmt.Sprintf("sel%s", w.Nid)
	case AC_WID_PIN:
		return fmt.Sprintf("%s%s", colorNames[w.Pin.Config.Color()], w.Nid)
	case AC_WID_POWER:
		return fmt.Sprintf("pow%s", w.Nid)
	case AC_WID_VOL_KNB:
		return fmt.Sprintf("volume%s", w.Nid)
	case AC_WID_BEEP:
		return fmt.Sprintf("beep%s", w.Nid)
	default:
		return fmt.Sprintf("widget%s", w.Nid)
	}
}

// Location suffixes, indexed by the gross location of external, internal and other pins.
var (
	externalLocations = map[int]string{2: ".front", 3: ".left", 4: ".right", 5: ".top", 6: ".bottom", 7: ".rearpnl", 8: ".drivebay"}
	internalLocations = map[int]string{7: ".riser", 8: ".hdmi"}
	otherLocations    = map[int]string{6: ".bottom", 7: ".lidin", 8: ".lidout"}
)

// pinName derives a readable pin name from the default device and location,
// e.g. "hp", "ispkr", "mic.front" or "dlineout". Non-pins keep their current name.
func pinName(w *Widget) string {
	if w.Type != AC_WID_PIN {
		return w.Name
	}

	loc := w.Pin.Config.Location()
	gross := loc & 0xf
	device := deviceNames[w.Pin.Config.Device()]

	switch loc >> 4 {
	case 0:
		return device + externalLocations[gross]
	case 1:
		return "i" + device + internalLocations[gross]
	case 2:
		return "d" + device + externalLocations[gross]
	default:
		return "o" + device + otherLocations[gross]
	}
}
