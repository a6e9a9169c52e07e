package hda

import (
	"fmt"
)

// mixerGet reads the current value of a widget target into mc.
func (c *Codec) mixerGet(nid Nid, target Target, mc *MixerCtrl) error {
	w := c.Widget(nid)
	if w == nil && target.Kind != TargetDAC && target.Kind != TargetADC {
		return fmt.Errorf("node %s: %w", nid, ErrNotFound)
	}

	switch target.Kind {
	case TargetInAmp, TargetOutAmp:
		if mc.Type == MixerEnum {
			reg := amp(nid, target, false)
			if err := reg.read(c); err != nil {
				return err
			}

			mc.Ord = boolOrd(reg.mute)

			return nil
		}

		if mc.Type != MixerValue {
			return fmt.Errorf("%s on %s: %w", target, w.Name, ErrInvalid)
		}

		mc.Channels = w.Channels()
		if target.Kind == TargetInAmp && (w.Type == AC_WID_AUD_MIX || w.Type == AC_WID_AUD_SEL) {
			if src := c.source(w, target.Index); src != nil {
				mc.Channels = src.Channels()
			}
		}

		for ch := 0; ch < mc.Channels; ch++ {
			reg := amp(nid, target, ch == 1)
			if err := reg.read(c); err != nil {
				return err
			}
			mc.Level[ch] = c.fromDevice(nid, target, reg.gain)
		}

		return nil

	case TargetConnList:
		resp, err := c.comresp(nid, AC_VERB_GET_CONNECT_SEL, 0)
		if err != nil {
			return err
		}

		sel := int(resp & 0xff)
		if c.source(w, sel) == nil {
			mc.Ord = -1
		} else {
			mc.Ord = sel
		}

		return nil

	case TargetPinDir, TargetPinBoost:
		ctl, err := c.comresp(nid, AC_VERB_GET_PIN_WIDGET_CONTROL, 0)
		if err != nil {
			return err
		}

		bit := AC_PINCTL_OUT_EN
		if target.Kind == TargetPinBoost {
			bit = AC_PINCTL_HP_EN
		}
		mc.Ord = boolOrd(ctl&bit != 0)

		return nil

	case TargetEAPD, TargetBalance, TargetLRSwap:
		resp, err := c.comresp(nid, AC_VERB_GET_EAPD_BTLENABLE, 0)
		if err != nil {
			return err
		}

		mc.Ord = boolOrd(resp&eapdBit(target.Kind) != 0)

		return nil

	case TargetVolume:
		resp, err := c.comresp(nid, AC_VERB_GET_VOLUME_KNOB_CONTROL, 0)
		if err != nil {
			return err
		}

		mc.Channels = 1
		mc.Level[0] = c.fromDevice(nid, target, resp&AC_KNB_VOLUME_MASK)

		return nil

	case TargetDAC:
		mc.Ord = c.DACs.Cur

		return nil

	case TargetADC:
		mc.Ord = c.ADCs.Cur

		return nil

	case TargetSPDIF:
		resp, err := c.comresp(nid, AC_VERB_GET_DIGI_CONVERT_1, 0)
		if err != nil {
			return err
		}

		mc.Mask = resp & 0xff &^ (AC_DIG1_ENABLE | AC_DIG1_NONAUDIO)

		return nil

	case TargetSPDIFCC:
		resp, err := c.comresp(nid, AC_VERB_GET_DIGI_CONVERT_1, 0)
		if err != nil {
			return err
		}

		mc.Channels = 1
		mc.Level[0] = uint8((resp >> AC_DIG2_CC_SHIFT) & AC_DIG2_CC_MASK)

		return nil
	}

	return fmt.Errorf("%s on %s: %w", target, w.Name, ErrInvalid)
}

// mixerSet writes mc to a widget target. Requests are validated before the first write.
func (c *Codec) mixerSet(nid Nid, target Target, mc *MixerCtrl) error {
	w := c.Widget(nid)
	if w == nil && target.Kind != TargetDAC && target.Kind != TargetADC {
		return fmt.Errorf("node %s: %w", nid, ErrNotFound)
	}

	switch target.Kind {
	case TargetInAmp, TargetOutAmp:
		if target.Kind == TargetInAmp && !validInAmp(w, target.Index) {
			return fmt.Errorf("input amplifier %d on %s: %w", target.Index, w.Name, ErrInvalid)
		}

		if mc.Type == MixerEnum {
			if mc.Ord < 0 || mc.Ord > 1 {
				return fmt.Errorf("mute ordinal %d: %w", mc.Ord, ErrInvalid)
			}

			return c.setAmp(w, target, ampMute, uint32(mc.Ord), uint32(mc.Ord))
		}

		if mc.Type != MixerValue {
			return fmt.Errorf("%s on %s: %w", target, w.Name, ErrInvalid)
		}

		left, right, err := c.levels(nid, target, mc)
		if err != nil {
			return err
		}

		return c.setAmp(w, target, ampGain, c.toDevice(nid, target, left), c.toDevice(nid, target, right))

	case TargetConnList:
		if mc.Type != MixerEnum || c.source(w, mc.Ord) == nil {
			return fmt.Errorf("connection %d on %s: %w", mc.Ord, w.Name, ErrInvalid)
		}

		if _, err := c.comresp(nid, AC_VERB_SET_CONNECT_SEL, uint32(mc.Ord)); err != nil {
			return err
		}
		w.Selected = mc.Ord

		return nil

	case TargetPinDir:
		if err := checkOrd(mc); err != nil {
			return err
		}

		dir := AC_PINCTL_IN_EN
		if mc.Ord == 1 {
			dir = AC_PINCTL_OUT_EN
		}

		return c.pinctrl(nid, dir)

	case TargetPinBoost:
		if err := checkOrd(mc); err != nil {
			return err
		}

		ctl, err := c.comresp(nid, AC_VERB_GET_PIN_WIDGET_CONTROL, 0)
		if err != nil {
			return err
		}

		ctl &^= AC_PINCTL_HP_EN
		if mc.Ord == 1 {
			ctl |= AC_PINCTL_HP_EN
		}

		_, err = c.comresp(nid, AC_VERB_SET_PIN_WIDGET_CONTROL, ctl&0xff)

		return err

	case TargetEAPD, TargetBalance, TargetLRSwap:
		if err := checkOrd(mc); err != nil {
			return err
		}

		resp, err := c.comresp(nid, AC_VERB_GET_EAPD_BTLENABLE, 0)
		if err != nil {
			return err
		}

		bit := eapdBit(target.Kind)
		resp &^= bit
		if mc.Ord == 1 {
			resp |= bit
		}

		_, err = c.comresp(nid, AC_VERB_SET_EAPD_BTLENABLE, resp&0xff)

		return err

	case TargetVolume:
		if mc.Type != MixerValue || mc.Channels != 1 || !c.validateValue(nid, target, mc.Level[0]) {
			return fmt.Errorf("volume on %s: %w", w.Name, ErrInvalid)
		}

		steps := c.toDevice(nid, target, mc.Level[0])
		_, err := c.comresp(nid, AC_VERB_SET_VOLUME_KNOB_CONTROL, AC_KNB_DIRECT|steps&AC_KNB_VOLUME_MASK)

		return err

	case TargetDAC, TargetADC:
		if c.running {
			return ErrBusy
		}

		set := &c.DACs
		if target.Kind == TargetADC {
			set = &c.ADCs
		}

		if mc.Ord < 0 || mc.Ord >= len(set.Groups) {
			return fmt.Errorf("%s group %d: %w", target, mc.Ord, ErrInvalid)
		}

		if target.Kind == TargetDAC {
			return c.constructFormat(mc.Ord, c.ADCs.Cur)
		}

		return c.constructFormat(c.DACs.Cur, mc.Ord)

	case TargetSPDIF:
		if mc.Type != MixerSet {
			return fmt.Errorf("spdif on %s: %w", w.Name, ErrInvalid)
		}

		resp, err := c.comresp(nid, AC_VERB_GET_DIGI_CONVERT_1, 0)
		if err != nil {
			return err
		}

		v := resp&(AC_DIG1_ENABLE|AC_DIG1_NONAUDIO) | mc.Mask&0xff&^AC_DIG1_ENABLE
		_, err = c.comresp(nid, AC_VERB_SET_DIGI_CONVERT_1, v&0xff)

		return err

	case TargetSPDIFCC:
		if mc.Type != MixerValue || mc.Channels != 1 || uint32(mc.Level[0]) > AC_DIG2_CC_MASK {
			return fmt.Errorf("spdif category on %s: %w", w.Name, ErrInvalid)
		}

		_, err := c.comresp(nid, AC_VERB_SET_DIGI_CONVERT_2, uint32(mc.Level[0]))

		return err
	}

	return fmt.Errorf("%s on %s: %w", target, w.Name, ErrInvalid)
}

// setAmp updates one field of the left amplifier and, on stereo widgets, the right one.
func (c *Codec) setAmp(w *Widget, target Target, field ampField, left, right uint32) error {
	if err := amp(w.Nid, target, false).readModifyWrite(c, field, left); err != nil {
		return err
	}

	if !w.Stereo() {
		return nil
	}

	return amp(w.Nid, target, true).readModifyWrite(c, field, right)
}

// levels validates the channel levels of a value request.
// A single channel request applies the same level to both channels.
func (c *Codec) levels(nid Nid, target Target, mc *MixerCtrl) (uint8, uint8, error) {
	if mc.Channels < 1 || mc.Channels > 2 {
		return 0, 0, fmt.Errorf("%d channels: %w", mc.Channels, ErrInvalid)
	}

	left, right := mc.Level[0], mc.Level[0]
	if mc.Channels == 2 {
		right = mc.Level[1]
	}

	if !c.validateValue(nid, target, left) || !c.validateValue(nid, target, right) {
		return 0, 0, fmt.Errorf("level %d/%d out of range: %w", left, right, ErrInvalid)
	}

	return left, right, nil
}

// pinctrl replaces the direction bits of a pin control register.
func (c *Codec) pinctrl(nid Nid, dir uint32) error {
	ctl, err := c.comresp(nid, AC_VERB_GET_PIN_WIDGET_CONTROL, 0)
	if err != nil {
		return err
	}

	ctl &^= AC_PINCTL_IN_EN | AC_PINCTL_OUT_EN
	ctl |= dir

	_, err = c.comresp(nid, AC_VERB_SET_PIN_WIDGET_CONTROL, ctl&0xff)

	return err
}

// source returns the widget at connection index i of w if it exists.
func (c *Codec) source(w *Widget, i int) *Widget {
	if i < 0 || i >= len(w.Connections) {
		return nil
	}

	return c.Widget(w.Connections[i])
}

// validInAmp reports whether w has an input amplifier at index i.
// Widgets without a connection list still have amplifier 0.
func validInAmp(w *Widget, i int) bool {
	return i == 0 || i > 0 && i < len(w.Connections)
}

func checkOrd(mc *MixerCtrl) error {
	if mc.Type != MixerEnum || mc.Ord < 0 || mc.Ord > 1 {
		return fmt.Errorf("ordinal %d: %w", mc.Ord, ErrInvalid)
	}

	return nil
}

func eapdBit(kind TargetKind) uint32 {
	switch kind {
	case TargetBalance:
		return AC_EAPDBTL_BALANCED
	case TargetLRSwap:
		return AC_EAPDBTL_LR_SWAP
	default:
		return AC_EAPDBTL_EAPD
	}
}

func boolOrd(b bool) int {
	if b {
		return 1
	}

	return 0
}
