package hda

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInjected is returned by the Simulator for commands failed with Fail.
var ErrInjected = errors.New("injected transport failure")

// SimAmp describes an amplifier in a simulated codec.
type SimAmp struct {
	Steps    uint32 `yaml:"steps"`
	StepSize uint32 `yaml:"step_size"`
	Offset   uint32 `yaml:"offset"`
	Mute     bool   `yaml:"mute"`
}

func (a *SimAmp) caps() uint32 {
	if a == nil {
		return 0
	}

	v := (a.Steps<<AC_AMPCAP_STEPS_SHIFT)&AC_AMPCAP_NUM_STEPS |
		(a.StepSize<<AC_AMPCAP_SIZE_SHIFT)&AC_AMPCAP_STEP_SIZE |
		a.Offset&AC_AMPCAP_OFFSET
	if a.Mute {
		v |= AC_AMPCAP_MUTE
	}

	return v
}

// SimPin describes a pin complex in a simulated codec.
type SimPin struct {
	Input     bool `yaml:"input"`
	Output    bool `yaml:"output"`
	Headphone bool `yaml:"headphone"`
	EAPD      bool `yaml:"eapd"`
	Balanced  bool `yaml:"balanced"`
	Presence  bool `yaml:"presence"`

	// Device and Color are names as used in widget names, e.g. "hp" or "green".
	Device       string `yaml:"device"`
	Color        string `yaml:"color"`
	Association  int    `yaml:"association"`
	Sequence     int    `yaml:"sequence"`
	Location     int    `yaml:"location"`
	Connectivity string `yaml:"connectivity"` // jack, none, fixed or both

	// Present is the initial jack presence.
	Present bool `yaml:"present"`
}

func (p *SimPin) caps() uint32 {
	var v uint32
	for _, b := range []struct {
		set bool
		bit uint32
	}{
		{p.Input, AC_PINCAP_IN},
		{p.Output, AC_PINCAP_OUT},
		{p.Headphone, AC_PINCAP_HP_DRV},
		{p.EAPD, AC_PINCAP_EAPD},
		{p.Balanced, AC_PINCAP_BALANCE},
		{p.Presence, AC_PINCAP_PRES_DETECT},
	} {
		if b.set {
			v |= b.bit
		}
	}

	return v
}

func (p *SimPin) config() (uint32, error) {
	device, err := lookupName(deviceNames[:], p.Device, AC_JACK_LINE_OUT)
	if err != nil {
		return 0, fmt.Errorf("device: %w", err)
	}

	color, err := lookupName(colorNames[:], p.Color, 0)
	if err != nil {
		return 0, fmt.Errorf("color: %w", err)
	}

	var conn uint32
	switch p.Connectivity {
	case "", "jack":
		conn = AC_JACK_PORT_COMPLEX
	case "none":
		conn = AC_JACK_PORT_NONE
	case "fixed":
		conn = AC_JACK_PORT_FIXED
	case "both":
		conn = AC_JACK_PORT_BOTH
	default:
		return 0, fmt.Errorf("connectivity %q: %w", p.Connectivity, ErrInvalid)
	}

	return uint32(p.Sequence)&0xf |
		uint32(p.Association)<<AC_DEFCFG_ASSOC_SHIFT&AC_DEFCFG_DEF_ASSOC |
		uint32(color)<<AC_DEFCFG_COLOR_SHIFT |
		uint32(device)<<AC_DEFCFG_DEVICE_SHIFT |
		uint32(p.Location)<<AC_DEFCFG_LOCATION_SHIFT&AC_DEFCFG_LOCATION |
		conn<<AC_DEFCFG_PORT_CONN_SHIFT, nil
}

func lookupName(names []string, name string, def int) (int, error) {
	if name == "" {
		return def, nil
	}

	for i, n := range names {
		if n == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("unknown name %q: %w", name, ErrInvalid)
}

// SimKnob describes a volume knob in a simulated codec.
type SimKnob struct {
	Steps uint32 `yaml:"steps"`
	Delta bool   `yaml:"delta"`
}

// SimWidget describes one widget of a simulated codec.
type SimWidget struct {
	Nid         Nid      `yaml:"nid"`
	Type        string   `yaml:"type"`
	Stereo      bool     `yaml:"stereo"`
	Digital     bool     `yaml:"digital"`
	LRSwap      bool     `yaml:"lrswap"`
	Unsol       bool     `yaml:"unsol"`
	Power       bool     `yaml:"power"`
	PCM         uint32   `yaml:"pcm"`
	InAmp       *SimAmp  `yaml:"in_amp"`
	OutAmp      *SimAmp  `yaml:"out_amp"`
	Pin         *SimPin  `yaml:"pin"`
	Knob        *SimKnob `yaml:"knob"`
	Connections []Nid    `yaml:"connections"`
	Selected    int      `yaml:"selected"`
}

// SimCodec is the description a Simulator is built from.
type SimCodec struct {
	VendorID    uint32      `yaml:"vendor_id"`
	SubsystemID uint32      `yaml:"subsystem_id"`
	RevisionID  uint32      `yaml:"revision_id"`
	AFG         Nid         `yaml:"afg"`
	PCM         uint32      `yaml:"pcm"`
	Widgets     []SimWidget `yaml:"widgets"`
}

// Default PCM support: 16, 20 and 24 bit at 44.1, 48 and 96kHz.
const simDefaultPCM = AC_SUPPCM_BITS_16 | AC_SUPPCM_BITS_20 | AC_SUPPCM_BITS_24 | 0x160

var simTypes = map[string]WidgetType{
	"dac":      AC_WID_AUD_OUT,
	"adc":      AC_WID_AUD_IN,
	"mixer":    AC_WID_AUD_MIX,
	"selector": AC_WID_AUD_SEL,
	"pin":      AC_WID_PIN,
	"power":    AC_WID_POWER,
	"knob":     AC_WID_VOL_KNB,
	"beep":     AC_WID_BEEP,
	"vendor":   AC_WID_VENDOR,
}

// SimCommand is one command received by a Simulator.
type SimCommand struct {
	Nid     Nid
	Verb    uint32
	Payload uint32
}

// String returns a human-readable representation of the SimCommand.
func (s SimCommand) String() string {
	return fmt.Sprintf("%s 0x%03x 0x%04x", s.Nid, s.Verb, s.Payload)
}

type ampKey struct {
	nid    Nid
	output bool
	index  int
	right  bool
}

type simNode struct {
	params  map[uint32]uint32
	config  uint32
	conns   []Nid
	sel     uint32
	pinctl  uint32
	eapd    uint32
	unsol   uint32
	power   uint32
	dig1    uint32
	dig2    uint32
	knob    uint32
	format  uint32
	present bool
}

// Simulator is a register-level model of an HDA codec. It implements Transport.
type Simulator struct {
	mu sync.Mutex

	desc  SimCodec
	nodes map[Nid]*simNode
	amps  map[ampKey]uint32

	gpioData, gpioMask, gpioDir uint32

	log  []SimCommand
	fail map[SimCommand]bool
}

// LoadSimulator reads a YAML codec description from a file.
func LoadSimulator(path string) (*Simulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sim, err := ParseSimulator(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sim, nil
}

// ParseSimulator builds a simulator from a YAML codec description.
func ParseSimulator(data []byte) (*Simulator, error) {
	var desc SimCodec
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse codec description: %w", err)
	}

	return NewSimulator(desc)
}

// NewSimulator builds a simulator from a codec description.
func NewSimulator(desc SimCodec) (*Simulator, error) {
	if desc.AFG == 0 {
		desc.AFG = 1
	}

	if desc.PCM == 0 {
		desc.PCM = simDefaultPCM
	}

	s := &Simulator{
		desc:  desc,
		nodes: make(map[Nid]*simNode),
		amps:  make(map[ampKey]uint32),
		fail:  make(map[SimCommand]bool),
	}

	first, last := Nid(0), Nid(0)
	for i, w := range desc.Widgets {
		if w.Nid <= desc.AFG {
			return nil, fmt.Errorf("widget %s must follow the function group %s: %w", w.Nid, desc.AFG, ErrInvalid)
		}

		if _, ok := s.nodes[w.Nid]; ok {
			return nil, fmt.Errorf("duplicate widget %s: %w", w.Nid, ErrInvalid)
		}

		n, err := s.buildWidget(w)
		if err != nil {
			return nil, fmt.Errorf("widget %s: %w", w.Nid, err)
		}
		s.nodes[w.Nid] = n

		if i == 0 || w.Nid < first {
			first = w.Nid
		}
		if w.Nid > last {
			last = w.Nid
		}
	}

	count := uint32(0)
	if len(desc.Widgets) > 0 {
		count = uint32(last - first + 1)
	}

	s.nodes[0] = &simNode{params: map[uint32]uint32{
		AC_PAR_VENDOR_ID:  desc.VendorID,
		AC_PAR_REV_ID:     desc.RevisionID,
		AC_PAR_NODE_COUNT: uint32(desc.AFG)<<AC_NODE_START_SHIFT | 1,
	}}

	s.nodes[desc.AFG] = &simNode{params: map[uint32]uint32{
		AC_PAR_FUNCTION_TYPE: AC_GRP_AUDIO_FUNCTION,
		AC_PAR_NODE_COUNT:    uint32(first)<<AC_NODE_START_SHIFT | count,
		AC_PAR_PCM:           desc.PCM,
		AC_PAR_AMP_IN_CAP:    0,
		AC_PAR_AMP_OUT_CAP:   0,
	}}

	// Widgets missing from the description read as vendor widgets without capabilities.
	for nid := first; nid <= last && count > 0; nid++ {
		if _, ok := s.nodes[nid]; !ok {
			s.nodes[nid] = &simNode{params: map[uint32]uint32{
				AC_PAR_AUDIO_WIDGET_CAP: uint32(AC_WID_VENDOR) << AC_WCAP_TYPE_SHIFT,
			}}
		}
	}

	return s, nil
}

func (s *Simulator) buildWidget(w SimWidget) (*simNode, error) {
	typ, ok := simTypes[strings.ToLower(w.Type)]
	if !ok {
		return nil, fmt.Errorf("type %q: %w", w.Type, ErrInvalid)
	}

	caps := uint32(typ) << AC_WCAP_TYPE_SHIFT
	for _, b := range []struct {
		set bool
		bit uint32
	}{
		{w.Stereo, AC_WCAP_STEREO},
		{w.Digital, AC_WCAP_DIGITAL},
		{w.LRSwap, AC_WCAP_LR_SWAP},
		{w.Unsol, AC_WCAP_UNSOL_CAP},
		{w.Power, AC_WCAP_POWER},
		{w.InAmp != nil, AC_WCAP_IN_AMP | AC_WCAP_AMP_OVRD},
		{w.OutAmp != nil, AC_WCAP_OUT_AMP | AC_WCAP_AMP_OVRD},
		{len(w.Connections) > 0, AC_WCAP_CONN_LIST},
		{w.PCM != 0, AC_WCAP_FORMAT_OVRD},
	} {
		if b.set {
			caps |= b.bit
		}
	}

	if len(w.Connections) > int(AC_CLIST_LENGTH) {
		return nil, fmt.Errorf("%d connections: %w", len(w.Connections), ErrInvalid)
	}

	n := &simNode{
		params: map[uint32]uint32{
			AC_PAR_AUDIO_WIDGET_CAP: caps,
			AC_PAR_AMP_IN_CAP:       w.InAmp.caps(),
			AC_PAR_AMP_OUT_CAP:      w.OutAmp.caps(),
			AC_PAR_CONNLIST_LEN:     uint32(len(w.Connections)),
			AC_PAR_PCM:              w.PCM,
		},
		conns: append([]Nid(nil), w.Connections...),
		sel:   uint32(w.Selected),
		power: AC_PWRST_D3,
	}

	for _, c := range w.Connections {
		if c > 0x7f {
			n.params[AC_PAR_CONNLIST_LEN] |= AC_CLIST_LONG
		}
	}

	if w.Pin != nil {
		cfg, err := w.Pin.config()
		if err != nil {
			return nil, err
		}

		n.config = cfg
		n.params[AC_PAR_PIN_CAP] = w.Pin.caps()
		n.present = w.Pin.Present
	}

	if w.Knob != nil {
		v := w.Knob.Steps & AC_KNBCAP_NUM_STEPS
		if w.Knob.Delta {
			v |= AC_KNBCAP_DELTA
		}
		n.params[AC_PAR_VOL_KNB_CAP] = v
	}

	return n, nil
}

// Command implements Transport.
func (s *Simulator) Command(nid Nid, verb uint32, payload uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := SimCommand{Nid: nid, Verb: verb, Payload: payload}
	s.log = append(s.log, cmd)

	if s.fail[cmd] || s.fail[SimCommand{Nid: nid, Verb: verb, Payload: anyPayload}] {
		return 0, ErrInjected
	}

	n, ok := s.nodes[nid]
	if !ok {
		return 0, fmt.Errorf("node %s: %w", nid, ErrNoDevice)
	}

	switch verb {
	case AC_VERB_PARAMETERS:
		return n.params[payload], nil

	case AC_VERB_GET_AMP_GAIN_MUTE:
		key := ampKey{
			nid:    nid,
			output: payload&AC_AMP_GET_OUTPUT != 0,
			right:  payload&AC_AMP_GET_LEFT == 0,
		}
		if !key.output {
			key.index = int(payload & 0xf)
		}

		return s.amps[key], nil

	case AC_VERB_SET_AMP_GAIN_MUTE:
		index := int(payload>>AC_AMP_SET_INDEX_SHIFT) & 0xf
		for _, out := range []bool{false, true} {
			if out && payload&AC_AMP_SET_OUTPUT == 0 || !out && payload&AC_AMP_SET_INPUT == 0 {
				continue
			}

			for _, right := range []bool{false, true} {
				if right && payload&AC_AMP_SET_RIGHT == 0 || !right && payload&AC_AMP_SET_LEFT == 0 {
					continue
				}

				key := ampKey{nid: nid, output: out, right: right}
				if !out {
					key.index = index
				}
				s.amps[key] = payload & (AC_AMP_MUTE | AC_AMP_GAIN_MASK)
			}
		}

		return 0, nil

	case AC_VERB_GET_CONNECT_SEL:
		return n.sel, nil

	case AC_VERB_SET_CONNECT_SEL:
		n.sel = payload & 0xff

		return 0, nil

	case AC_VERB_GET_CONNECT_LIST:
		return n.connectionWord(int(payload)), nil

	case AC_VERB_GET_POWER_STATE:
		return n.power | n.power<<4, nil

	case AC_VERB_SET_POWER_STATE:
		n.power = payload & 0xf

		return 0, nil

	case AC_VERB_GET_PIN_WIDGET_CONTROL:
		return n.pinctl, nil

	case AC_VERB_SET_PIN_WIDGET_CONTROL:
		n.pinctl = payload & 0xff

		return 0, nil

	case AC_VERB_GET_UNSOLICITED_RESPONSE:
		return n.unsol, nil

	case AC_VERB_SET_UNSOLICITED_ENABLE:
		n.unsol = payload & 0xff

		return 0, nil

	case AC_VERB_GET_PIN_SENSE:
		if n.present {
			return AC_PINSENSE_PRESENCE, nil
		}

		return 0, nil

	case AC_VERB_GET_EAPD_BTLENABLE:
		return n.eapd, nil

	case AC_VERB_SET_EAPD_BTLENABLE:
		n.eapd = payload & 0xff

		return 0, nil

	case AC_VERB_GET_DIGI_CONVERT_1:
		return n.dig1 | n.dig2<<AC_DIG2_CC_SHIFT, nil

	case AC_VERB_SET_DIGI_CONVERT_1:
		n.dig1 = payload & 0xff

		return 0, nil

	case AC_VERB_SET_DIGI_CONVERT_2:
		n.dig2 = payload & AC_DIG2_CC_MASK

		return 0, nil

	case AC_VERB_GET_VOLUME_KNOB_CONTROL:
		return n.knob, nil

	case AC_VERB_SET_VOLUME_KNOB_CONTROL:
		n.knob = payload & 0xff

		return 0, nil

	case AC_VERB_GET_STREAM_FORMAT:
		return n.format, nil

	case AC_VERB_SET_STREAM_FORMAT:
		n.format = payload & 0xffff

		return 0, nil

	case AC_VERB_GET_GPIO_DATA:
		return s.gpioData, nil

	case AC_VERB_GET_GPIO_MASK:
		return s.gpioMask, nil

	case AC_VERB_GET_GPIO_DIRECTION:
		return s.gpioDir, nil

	case AC_VERB_SET_GPIO_DATA:
		s.gpioData = payload & 0xff

		return 0, nil

	case AC_VERB_SET_GPIO_MASK:
		s.gpioMask = payload & 0xff

		return 0, nil

	case AC_VERB_SET_GPIO_DIRECTION:
		s.gpioDir = payload & 0xff

		return 0, nil

	case AC_VERB_GET_CONFIG_DEFAULT:
		return n.config, nil

	case AC_VERB_GET_SUBSYSTEM_ID:
		return s.desc.SubsystemID, nil
	}

	// Unknown verbs read as zero like on real hardware.
	return 0, nil
}

// connectionWord returns the short or long form list entries starting at offset.
func (n *simNode) connectionWord(offset int) uint32 {
	perWord, bits := 4, uint32(8)
	if n.params[AC_PAR_CONNLIST_LEN]&AC_CLIST_LONG != 0 {
		perWord, bits = 2, 16
	}

	var word uint32
	for j := 0; j < perWord && offset+j < len(n.conns); j++ {
		word |= uint32(n.conns[offset+j]) << (uint32(j) * bits)
	}

	return word
}

// anyPayload makes Fail match every payload of a verb.
const anyPayload = ^uint32(0)

// Fail makes every later command with this node and verb fail with ErrInjected.
func (s *Simulator) Fail(nid Nid, verb uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail[SimCommand{Nid: nid, Verb: verb, Payload: anyPayload}] = true
}

// Recover clears all injected failures.
func (s *Simulator) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail = make(map[SimCommand]bool)
}

// SetPresence plugs or unplugs the jack of a pin.
func (s *Simulator) SetPresence(nid Nid, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[nid]; ok {
		n.present = present
	}
}

// Commands returns the commands received so far.
func (s *Simulator) Commands() []SimCommand {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SimCommand(nil), s.log...)
}

// ResetLog clears the command log.
func (s *Simulator) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = nil
}

// Writes returns the logged commands that change codec state.
func (s *Simulator) Writes() []SimCommand {
	var writes []SimCommand
	for _, cmd := range s.Commands() {
		if isSetVerb(cmd.Verb) {
			writes = append(writes, cmd)
		}
	}

	return writes
}

// isSetVerb reports whether a verb writes codec state.
func isSetVerb(verb uint32) bool {
	if verb <= 0x0fff && verb >= 0x0f00 || verb == AC_VERB_GET_AMP_GAIN_MUTE || verb == AC_VERB_GET_STREAM_FORMAT {
		return false
	}

	return true
}

// Amp returns the raw register of one amplifier channel.
func (s *Simulator) Amp(nid Nid, output bool, index int, right bool) (mute bool, gain uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if output {
		index = 0
	}

	v := s.amps[ampKey{nid: nid, output: output, index: index, right: right}]

	return v&AC_AMP_MUTE != 0, v & AC_AMP_GAIN_MASK
}

// PinControl returns the pin widget control register of a pin.
func (s *Simulator) PinControl(nid Nid) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[nid]; ok {
		return n.pinctl
	}

	return 0
}

// Unsol returns the unsolicited response register of a node.
func (s *Simulator) Unsol(nid Nid) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[nid]; ok {
		return n.unsol
	}

	return 0
}

// GPIO returns the data, mask and direction registers of the function group.
func (s *Simulator) GPIO() (data, mask, dir uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gpioData, s.gpioMask, s.gpioDir
}

// Description returns the codec description the simulator was built from.
func (s *Simulator) Description() SimCodec {
	return s.desc
}
