package hda

import (
	"errors"
	"fmt"
)

// Capacities of the fixed-size collections. Entries beyond capacity are ignored.
const (
	MaxAssociations    = 16
	MaxSequences       = 16
	MaxGroups          = 32
	MaxGroupConverters = 16
	MaxConnections     = 32
	MaxEnumMembers     = 32
	MaxLabelLen        = 16
)

// MixerLast is the "none" sentinel for DevInfo.Prev and DevInfo.Next.
const MixerLast = -1

var (
	// ErrInvalid is returned for malformed control requests.
	ErrInvalid = errors.New("invalid argument")
	// ErrBusy is returned when a converter group is reselected while streaming.
	ErrBusy = errors.New("device busy")
	// ErrNoDevice is returned for a mixer index out of range.
	ErrNoDevice = errors.New("no such mixer device")
	// ErrNotFound is returned when a widget, control or path does not exist.
	ErrNotFound = errors.New("not found")
)

// Nid is a widget node id.
type Nid uint16

// String returns the node id in the two-digit hexadecimal form used in widget names.
func (n Nid) String() string {
	return fmt.Sprintf("%02x", uint16(n))
}

// WidgetType is the audio widget type from the widget capabilities.
type WidgetType uint32

const (
	AC_WID_AUD_OUT WidgetType = 0x0
	AC_WID_AUD_IN  WidgetType = 0x1
	AC_WID_AUD_MIX WidgetType = 0x2
	AC_WID_AUD_SEL WidgetType = 0x3
	AC_WID_PIN     WidgetType = 0x4
	AC_WID_POWER   WidgetType = 0x5
	AC_WID_VOL_KNB WidgetType = 0x6
	AC_WID_BEEP    WidgetType = 0x7
	AC_WID_VENDOR  WidgetType = 0xf
)

// String returns a human-readable representation of the WidgetType.
func (t WidgetType) String() string {
	switch t {
	case AC_WID_AUD_OUT:
		return "audio-output"
	case AC_WID_AUD_IN:
		return "audio-input"
	case AC_WID_AUD_MIX:
		return "mixer"
	case AC_WID_AUD_SEL:
		return "selector"
	case AC_WID_PIN:
		return "pin"
	case AC_WID_POWER:
		return "power"
	case AC_WID_VOL_KNB:
		return "volume-knob"
	case AC_WID_BEEP:
		return "beep"
	case AC_WID_VENDOR:
		return "vendor"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// MixerType is the kind of a mixer control.
type MixerType int

const (
	MixerClass MixerType = iota
	MixerEnum
	MixerSet
	MixerValue
)

// String returns a human-readable representation of the MixerType.
func (t MixerType) String() string {
	switch t {
	case MixerClass:
		return "class"
	case MixerEnum:
		return "enum"
	case MixerSet:
		return "set"
	case MixerValue:
		return "value"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Mixer classes. The class items are always the first five controls of a table.
const (
	ClassInputs = iota
	ClassOutputs
	ClassRecord
	ClassPlayback
	ClassMix
)

// Class labels, indexed by class.
var classNames = [...]string{
	ClassInputs:   "inputs",
	ClassOutputs:  "outputs",
	ClassRecord:   "record",
	ClassPlayback: "playback",
	ClassMix:      "mix",
}

// Enum member labels.
const (
	AudioNOn     = "on"
	AudioNOff    = "off"
	AudioNInput  = "input"
	AudioNOutput = "output"
	AudioNMaster = "master"
	AudioNVolume = "volume"
	AudioNDAC    = "dac"
	AudioNMode   = "mode"
	AudioNSource = "source"
	AudioNMute   = "mute"

	AudioNHeadphone  = "headphone"
	AudioNSpeaker    = "speaker"
	AudioNMono       = "mono"
	AudioNCD         = "cd"
	AudioNLine       = "line"
	AudioNMicrophone = "mic"
	AudioNMixerOut   = "mixerout"
	AudioNAux        = "aux"
	AudioNAnalog     = "analog"
	AudioNDigital    = "digital"
	AudioNSPDIF      = "spdif"
)

// TargetKind selects which hardware aspect of a widget a control addresses.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetInAmp
	TargetOutAmp
	TargetConnList
	TargetPinDir
	TargetPinBoost
	TargetEAPD
	TargetBalance
	TargetLRSwap
	TargetVolume
	TargetDAC
	TargetADC
	TargetSPDIF
	TargetSPDIFCC
)

// String returns a human-readable representation of the TargetKind.
func (k TargetKind) String() string {
	switch k {
	case TargetNone:
		return "none"
	case TargetInAmp:
		return "inamp"
	case TargetOutAmp:
		return "outamp"
	case TargetConnList:
		return "connlist"
	case TargetPinDir:
		return "pindir"
	case TargetPinBoost:
		return "pinboost"
	case TargetEAPD:
		return "eapd"
	case TargetBalance:
		return "balance"
	case TargetLRSwap:
		return "lrswap"
	case TargetVolume:
		return "volume"
	case TargetDAC:
		return "dac"
	case TargetADC:
		return "adc"
	case TargetSPDIF:
		return "spdif"
	case TargetSPDIFCC:
		return "spdif-cc"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Target identifies the register set a control is backed by.
// Index is the input amplifier index and only meaningful for TargetInAmp.
type Target struct {
	Kind  TargetKind
	Index int
}

// InAmp returns the target of the input amplifier at index i.
func InAmp(i int) Target {
	return Target{Kind: TargetInAmp, Index: i}
}

// To returns a target of the given kind.
func To(kind TargetKind) Target {
	return Target{Kind: kind}
}

// String returns a human-readable representation of the Target.
func (t Target) String() string {
	if t.Kind == TargetInAmp {
		return fmt.Sprintf("inamp%d", t.Index)
	}

	return t.Kind.String()
}

// EnumMember is one ordinal of an enum or set control.
// For set controls Ord holds the member bit mask.
type EnumMember struct {
	Label string
	Ord   int
}

// DevInfo describes a mixer control to the host.
type DevInfo struct {
	Index   int
	Label   string
	Type    MixerType
	Class   int
	Prev    int
	Next    int
	Members []EnumMember

	// Value controls only.
	Channels int
	Delta    int
	Units    string
}

func (d DevInfo) hasMember(ord int) bool {
	for _, m := range d.Members {
		if m.Ord == ord {
			return true
		}
	}

	return false
}

// MixerItem is one exposed control backed by a widget and target.
type MixerItem struct {
	Info   DevInfo
	Nid    Nid
	Target Target
}

// MixerCtrl carries the value of a control for GetPort and SetPort.
// Enum controls use Ord, set controls use Mask, value controls use Channels and Level.
type MixerCtrl struct {
	Dev      int
	Type     MixerType
	Ord      int
	Mask     uint32
	Channels int
	Level    [2]uint8
}
