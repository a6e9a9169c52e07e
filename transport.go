package hda

import (
	"fmt"
)

// Transport sends one verb to a codec node and returns the response.
// Every call is synchronous. Implementations are Hwdep and Simulator.
type Transport interface {
	Command(nid Nid, verb uint32, payload uint32) (uint32, error)
}

// comresp issues a verb and wraps transport failures with the failing verb.
func (c *Codec) comresp(nid Nid, verb uint32, payload uint32) (uint32, error) {
	resp, err := c.transport.Command(nid, verb, payload)
	if err != nil {
		return 0, fmt.Errorf("verb 0x%03x to node %s failed: %w", verb, nid, err)
	}

	return resp, nil
}

// param reads a codec parameter.
func (c *Codec) param(nid Nid, id uint32) (uint32, error) {
	return c.comresp(nid, AC_VERB_PARAMETERS, id)
}

// ampField is one of the two logical fields of an amplifier register.
type ampField int

const (
	ampMute ampField = iota
	ampGain
)

// ampRegister is one channel of one amplifier: mute and gain packed into a single register.
type ampRegister struct {
	nid    Nid
	output bool
	index  int
	right  bool

	mute bool
	gain uint32
}

func (a *ampRegister) getPayload() uint32 {
	var p uint32
	if a.output {
		p |= AC_AMP_GET_OUTPUT
	} else {
		p |= uint32(a.index)
	}

	if !a.right {
		p |= AC_AMP_GET_LEFT
	}

	return p
}

func (a *ampRegister) setPayload() uint32 {
	var p uint32
	if a.output {
		p |= AC_AMP_SET_OUTPUT
	} else {
		p |= AC_AMP_SET_INPUT | uint32(a.index)<<AC_AMP_SET_INDEX_SHIFT
	}

	if a.right {
		p |= AC_AMP_SET_RIGHT
	} else {
		p |= AC_AMP_SET_LEFT
	}

	if a.mute {
		p |= AC_AMP_MUTE
	}

	return p | a.gain&AC_AMP_GAIN_MASK
}

// amp returns the register for the given target and channel without touching hardware.
func amp(nid Nid, target Target, right bool) *ampRegister {
	return &ampRegister{
		nid:    nid,
		output: target.Kind == TargetOutAmp,
		index:  target.Index,
		right:  right,
	}
}

// read loads both fields from the codec.
func (a *ampRegister) read(c *Codec) error {
	resp, err := c.comresp(a.nid, AC_VERB_GET_AMP_GAIN_MUTE, a.getPayload())
	if err != nil {
		return err
	}

	a.mute = resp&AC_AMP_MUTE != 0
	a.gain = resp & AC_AMP_GAIN_MASK

	return nil
}

// readModifyWrite replaces one field and keeps the other as currently set in hardware.
// Nothing is written if the read fails.
func (a *ampRegister) readModifyWrite(c *Codec, field ampField, value uint32) error {
	if err := a.read(c); err != nil {
		return err
	}

	switch field {
	case ampMute:
		a.mute = value != 0
	case ampGain:
		a.gain = value & AC_AMP_GAIN_MASK
	}

	_, err := c.comresp(a.nid, AC_VERB_SET_AMP_GAIN_MUTE, a.setPayload())

	return err
}
