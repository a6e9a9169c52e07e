package hda

import (
	"fmt"
	"time"
)

// discover locates the audio function group and reads every widget below it.
func (c *Codec) discover() error {
	nodes, err := c.param(0, AC_PAR_NODE_COUNT)
	if err != nil {
		return fmt.Errorf("failed to read root node count: %w", err)
	}

	start := Nid((nodes >> AC_NODE_START_SHIFT) & 0xff)
	count := Nid(nodes & AC_NODE_COUNT_MASK)

	found := false
	for nid := start; nid < start+count; nid++ {
		typ, err := c.param(nid, AC_PAR_FUNCTION_TYPE)
		if err != nil {
			return fmt.Errorf("failed to read function type of node %s: %w", nid, err)
		}

		if typ&0xff == AC_GRP_AUDIO_FUNCTION {
			c.AudioFunc = nid
			found = true

			break
		}
	}

	if !found {
		return fmt.Errorf("no audio function group: %w", ErrNotFound)
	}

	afg := c.AudioFunc
	if _, err := c.comresp(afg, AC_VERB_SET_POWER_STATE, AC_PWRST_D0); err != nil {
		return err
	}

	if c.SubsystemID, err = c.comresp(afg, AC_VERB_GET_SUBSYSTEM_ID, 0); err != nil {
		return err
	}

	if c.fgPCM, err = c.param(afg, AC_PAR_PCM); err != nil {
		return err
	}

	in, err := c.param(afg, AC_PAR_AMP_IN_CAP)
	if err != nil {
		return err
	}
	c.fgAmpIn = AmpCap(in)

	out, err := c.param(afg, AC_PAR_AMP_OUT_CAP)
	if err != nil {
		return err
	}
	c.fgAmpOut = AmpCap(out)

	nodes, err = c.param(afg, AC_PAR_NODE_COUNT)
	if err != nil {
		return fmt.Errorf("failed to read widget count: %w", err)
	}

	c.wstart = Nid((nodes >> AC_NODE_START_SHIFT) & 0xff)
	c.wend = c.wstart + Nid(nodes&AC_NODE_COUNT_MASK)
	c.widgets = make([]Widget, c.wend)

	c.log.Debug().
		Stringer("afg", afg).
		Str("subid", fmt.Sprintf("%08x", c.SubsystemID)).
		Stringer("start", c.wstart).
		Stringer("end", c.wend).
		Msg("audio function group")

	for nid := c.wstart; nid < c.wend; nid++ {
		if err := c.readWidget(nid); err != nil {
			return fmt.Errorf("failed to read widget %s: %w", nid, err)
		}

		if w := &c.widgets[nid]; w.enabled {
			c.log.Trace().Stringer("widget", w).Int("connections", len(w.Connections)).Msg("discovered")
		}
	}

	return nil
}

// readWidget fills in the capabilities, connections and default name of one widget.
func (c *Codec) readWidget(nid Nid) error {
	w := &c.widgets[nid]
	w.Nid = nid
	w.Selected = -1

	caps, err := c.param(nid, AC_PAR_AUDIO_WIDGET_CAP)
	if err != nil {
		return err
	}

	w.Caps = caps
	w.Type = WidgetType((caps & AC_WCAP_TYPE_MASK) >> AC_WCAP_TYPE_SHIFT)

	if caps&AC_WCAP_POWER != 0 {
		if _, err := c.comresp(nid, AC_VERB_SET_POWER_STATE, AC_PWRST_D0); err != nil {
			return err
		}
		time.Sleep(100 * time.Microsecond)
	}

	switch w.Type {
	case AC_WID_AUD_OUT, AC_WID_AUD_IN:
		w.BitsRates = c.fgPCM
		if caps&AC_WCAP_FORMAT_OVRD != 0 {
			if w.BitsRates, err = c.param(nid, AC_PAR_PCM); err != nil {
				return err
			}
		}
	case AC_WID_PIN:
		if err := c.readPin(w); err != nil {
			return err
		}
	case AC_WID_VOL_KNB:
		knob, err := c.param(nid, AC_PAR_VOL_KNB_CAP)
		if err != nil {
			return err
		}
		w.Knob = KnobCap(knob)
	}

	if caps&AC_WCAP_IN_AMP != 0 {
		w.InAmp = c.fgAmpIn
		if caps&AC_WCAP_AMP_OVRD != 0 {
			in, err := c.param(nid, AC_PAR_AMP_IN_CAP)
			if err != nil {
				return err
			}
			w.InAmp = AmpCap(in)
		}
	}

	if caps&AC_WCAP_OUT_AMP != 0 {
		w.OutAmp = c.fgAmpOut
		if caps&AC_WCAP_AMP_OVRD != 0 {
			out, err := c.param(nid, AC_PAR_AMP_OUT_CAP)
			if err != nil {
				return err
			}
			w.OutAmp = AmpCap(out)
		}
	}

	if caps&AC_WCAP_CONN_LIST != 0 {
		if err := c.readConnections(w); err != nil {
			return err
		}
	}

	w.Name = defaultWidgetName(w)
	w.enabled = true

	return nil
}

func (c *Codec) readPin(w *Widget) error {
	cfg, err := c.comresp(w.Nid, AC_VERB_GET_CONFIG_DEFAULT, 0)
	if err != nil {
		return err
	}
	w.Pin.Config = PinConfig(cfg)

	pcap, err := c.param(w.Nid, AC_PAR_PIN_CAP)
	if err != nil {
		return err
	}
	w.Pin.Cap = PinCap(pcap)

	ctl, err := c.comresp(w.Nid, AC_VERB_GET_PIN_WIDGET_CONTROL, 0)
	if err != nil {
		return err
	}

	ctl &^= AC_PINCTL_IN_EN | AC_PINCTL_OUT_EN | AC_PINCTL_HP_EN
	switch {
	case w.Pin.Cap.Output():
		ctl |= AC_PINCTL_OUT_EN
		if w.Pin.Cap.Headphone() {
			ctl |= AC_PINCTL_HP_EN
		}
	case w.Pin.Cap.Input():
		ctl |= AC_PINCTL_IN_EN
	}

	_, err = c.comresp(w.Nid, AC_VERB_SET_PIN_WIDGET_CONTROL, ctl)

	return err
}

// readConnections reads the short or long form connection list and the selected entry.
func (c *Codec) readConnections(w *Widget) error {
	resp, err := c.param(w.Nid, AC_PAR_CONNLIST_LEN)
	if err != nil {
		return err
	}

	long := resp&AC_CLIST_LONG != 0
	n := int(resp & AC_CLIST_LENGTH)

	perWord, bits := 4, uint32(8)
	if long {
		perWord, bits = 2, 16
	}
	mask := uint32(1)<<bits - 1
	rangeFlag := uint32(1) << (bits - 1)

	var prev Nid
	w.Connections = w.Connections[:0]

	for i := 0; i < n; i += perWord {
		word, err := c.comresp(w.Nid, AC_VERB_GET_CONNECT_LIST, uint32(i))
		if err != nil {
			return err
		}

		for j := 0; j < perWord && i+j < n; j++ {
			entry := (word >> (uint32(j) * bits)) & mask
			nid := Nid(entry &^ rangeFlag)

			if entry&rangeFlag != 0 && prev != 0 && nid > prev {
				for r := prev + 1; r <= nid; r++ {
					w.addConnection(r)
				}
			} else {
				w.addConnection(nid)
			}

			prev = nid
		}
	}

	if len(w.Connections) == 0 || w.Type == AC_WID_AUD_MIX || w.Type == AC_WID_POWER {
		return nil
	}

	sel, err := c.comresp(w.Nid, AC_VERB_GET_CONNECT_SEL, 0)
	if err != nil {
		return err
	}

	if int(sel&0xff) < len(w.Connections) {
		w.Selected = int(sel & 0xff)
	}

	return nil
}

func (w *Widget) addConnection(nid Nid) {
	if len(w.Connections) < MaxConnections {
		w.Connections = append(w.Connections, nid)
	}
}
