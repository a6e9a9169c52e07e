package hda

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Config holds the attach options for a codec.
type Config struct {
	// SubsystemID overrides the subsystem id read from the codec when non-zero.
	SubsystemID uint32
	// Scale selects the level scaling policy. ScaleDefault uses the build default.
	Scale ScalePolicy
	// Logger receives debug output. Logging is disabled when nil.
	Logger *zerolog.Logger
}

// Jack is a pin registered for unsolicited presence events.
type Jack struct {
	Nid Nid
	Tag int
}

// Codec is an attached HDA codec with its widget graph and mixer.
type Codec struct {
	mu        sync.Mutex
	transport Transport
	log       zerolog.Logger

	VendorID    uint32
	SubsystemID uint32
	RevisionID  uint32
	Name        string
	Family      Family
	AudioFunc   Nid

	DACs ConvGroupSet
	ADCs ConvGroupSet

	wstart  Nid
	wend    Nid
	widgets []Widget
	mixers  []MixerItem
	extra   []uint32
	jacks   []Jack
	formats []StreamFormat
	ops     Ops
	scale   ScalePolicy
	running bool

	// Audio function group defaults for widgets without overrides.
	fgAmpIn  AmpCap
	fgAmpOut AmpCap
	fgPCM    uint32
}

// Attach discovers the codec behind the transport and builds its mixer.
func Attach(t Transport, config *Config) (*Codec, error) {
	if t == nil {
		return nil, fmt.Errorf("transport is nil")
	}

	if config == nil {
		config = &Config{}
	}

	c := &Codec{
		transport: t,
		log:       zerolog.Nop(),
		scale:     config.Scale,
	}

	if c.scale == ScaleDefault {
		c.scale = defaultScale
	}

	if config.Logger != nil {
		c.log = *config.Logger
	}

	vid, err := c.param(0, AC_PAR_VENDOR_ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor id: %w", err)
	}
	c.VendorID = vid

	rev, err := c.param(0, AC_PAR_REV_ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read revision id: %w", err)
	}
	c.RevisionID = rev

	if err := c.discover(); err != nil {
		return nil, err
	}

	if config.SubsystemID != 0 {
		c.SubsystemID = config.SubsystemID
	}

	entry := lookupCodec(c.VendorID)
	c.Family = entry.family
	c.Name = entry.name
	c.ops = entry.family.ops()
	c.extra = make([]uint32, entry.extra)
	c.log = c.log.With().Str("codec", c.Name).Logger()

	c.log.Debug().
		Str("vid", fmt.Sprintf("%08x", c.VendorID)).
		Str("subid", fmt.Sprintf("%08x", c.SubsystemID)).
		Stringer("family", c.Family).
		Msg("attach")

	for i := range c.widgets {
		w := &c.widgets[i]
		if !w.enabled {
			continue
		}

		if err := c.ops.InitWidget(c, w); err != nil {
			return nil, fmt.Errorf("failed to initialize widget %s: %w", w.Nid, err)
		}
	}

	if err := c.ops.InitDACGroup(c); err != nil {
		return nil, fmt.Errorf("failed to build converter groups: %w", err)
	}

	if err := c.constructFormat(c.DACs.Cur, c.ADCs.Cur); err != nil {
		return nil, err
	}

	if err := c.ops.MixerInit(c); err != nil {
		c.mixers = nil

		return nil, fmt.Errorf("failed to build mixer: %w", err)
	}

	return c, nil
}

// Close releases the mixer table and closes the transport if it is closable.
func (c *Codec) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ops != nil {
		if err := c.ops.MixerDelete(c); err != nil {
			return err
		}
	}

	c.jacks = nil
	c.extra = nil

	if closer, ok := c.transport.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Widget returns the widget with the given node id, or nil if there is none.
func (c *Codec) Widget(nid Nid) *Widget {
	if c == nil || nid < c.wstart || nid >= c.wend || int(nid) >= len(c.widgets) {
		return nil
	}

	w := &c.widgets[nid]
	if !w.enabled {
		return nil
	}

	return w
}

// Widgets returns all widgets of the audio function group in ascending node id order.
func (c *Codec) Widgets() []*Widget {
	if c == nil {
		return nil
	}

	ws := make([]*Widget, 0, len(c.widgets))
	for i := range c.widgets {
		if c.widgets[i].enabled {
			ws = append(ws, &c.widgets[i])
		}
	}

	return ws
}

// WidgetByName returns the first widget with the given name.
func (c *Codec) WidgetByName(name string) (*Widget, error) {
	if c == nil {
		return nil, fmt.Errorf("codec is nil")
	}

	for _, w := range c.Widgets() {
		if w.Name == name {
			return w, nil
		}
	}

	return nil, fmt.Errorf("widget %q: %w", name, ErrNotFound)
}

// SetStreaming marks the codec as streaming. Converter groups cannot be changed while streaming.
func (c *Codec) SetStreaming(running bool) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.running = running
	c.mu.Unlock()
}

// Streaming reports whether the codec is streaming.
func (c *Codec) Streaming() bool {
	if c == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Scale returns the level scaling policy in effect.
func (c *Codec) Scale() ScalePolicy {
	if c == nil {
		return ScaleDefault
	}

	return c.scale
}

// Extra returns the chip specific scratch area.
func (c *Codec) Extra() []uint32 {
	if c == nil {
		return nil
	}

	return c.extra
}

// Jacks returns the pins registered for unsolicited events.
func (c *Codec) Jacks() []Jack {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Jack(nil), c.jacks...)
}

// Unsolicited delivers an unsolicited event tag to the chip handler.
func (c *Codec) Unsolicited(tag int) error {
	if c == nil {
		return fmt.Errorf("codec is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug().Int("tag", tag).Msg("unsolicited event")

	return c.ops.UnsolEvent(c, tag)
}

// enableUnsol asks the pin to report presence changes with tag and records the jack.
func (c *Codec) enableUnsol(nid Nid, tag int) error {
	if _, err := c.comresp(nid, AC_VERB_SET_UNSOLICITED_ENABLE, AC_USRSP_EN|uint32(tag)&0x3f); err != nil {
		return err
	}

	for i := range c.jacks {
		if c.jacks[i].Nid == nid {
			c.jacks[i].Tag = tag

			return nil
		}
	}

	c.jacks = append(c.jacks, Jack{Nid: nid, Tag: tag})

	return nil
}

// pinPresent reports whether a jack is plugged into the pin.
func (c *Codec) pinPresent(nid Nid) (bool, error) {
	resp, err := c.comresp(nid, AC_VERB_GET_PIN_SENSE, 0)
	if err != nil {
		return false, err
	}

	return resp&AC_PINSENSE_PRESENCE != 0, nil
}

// PinPresent reports whether a jack is plugged into the pin.
func (c *Codec) PinPresent(nid Nid) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("codec is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pinPresent(nid)
}
