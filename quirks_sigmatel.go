package hda

import (
	"fmt"
	"time"
)

// Sigmatel STAC9221 and STAC9221D.
const (
	stac9221Mac = 0x76808384

	// Undocumented vendor verb issued before reprogramming the GPIOs.
	stac9221VerbGPIOReset uint32 = 0x7e7

	// Settling time between the GPIO direction setup and the data write.
	gpioSettle = time.Millisecond
)

type stac9221Ops struct{ genericOps }

func (stac9221Ops) InitDACGroup(c *Codec) error {
	return c.initFixedGroups(
		[]ConvGroup{{0x02, 0x03, 0x04, 0x05}, {0x08}, {0x1a}},
		[]ConvGroup{{0x06, 0x07}, {0x09}},
	)
}

func (stac9221Ops) MixerInit(c *Codec) error {
	if err := c.mixerInit(); err != nil {
		return err
	}

	if c.SubsystemID != stac9221Mac {
		return nil
	}

	// The amplifiers of these machines sit behind GPIO 0 and 1.
	for _, pin := range []uint{0, 1} {
		if err := c.gpioUnmute(pin); err != nil {
			return fmt.Errorf("failed to unmute gpio %d: %w", pin, err)
		}
	}

	return nil
}

// gpioUnmute drives a GPIO of the audio function group low as an output.
func (c *Codec) gpioUnmute(pin uint) error {
	afg := c.AudioFunc

	data, err := c.comresp(afg, AC_VERB_GET_GPIO_DATA, 0)
	if err != nil {
		return err
	}

	mask, err := c.comresp(afg, AC_VERB_GET_GPIO_MASK, 0)
	if err != nil {
		return err
	}

	dir, err := c.comresp(afg, AC_VERB_GET_GPIO_DIRECTION, 0)
	if err != nil {
		return err
	}

	data &^= 1 << pin
	mask |= 1 << pin
	dir |= 1 << pin

	steps := []struct {
		verb    uint32
		payload uint32
	}{
		{stac9221VerbGPIOReset, 0},
		{AC_VERB_SET_GPIO_MASK, mask},
		{AC_VERB_SET_GPIO_DIRECTION, dir},
	}

	for _, s := range steps {
		if _, err := c.comresp(afg, s.verb, s.payload&0xff); err != nil {
			return err
		}
	}

	time.Sleep(gpioSettle)

	_, err = c.comresp(afg, AC_VERB_SET_GPIO_DATA, data&0xff)

	return err
}

// Sigmatel STAC9200 and STAC9200D.
const (
	stac9200EventHP = 0

	stac9200HP      Nid = 0x0d
	stac9200Speaker Nid = 0x0e
)

// Dell laptops that report headphone presence.
var stac9200Dell = map[uint32]string{
	0x01bd1028: "Inspiron 6400",
	0x01cd1028: "Inspiron 9400",
	0x01d81028: "Latitude 640M",
	0x01d61028: "Latitude D420",
	0x02011028: "Latitude D430",
}

var stac9200Items = []MixerItem{
	sourceItem(AudioNSource, ClassOutputs, 0x07,
		EnumMember{AudioNDAC, 0}, EnumMember{AudioNDigital + "-in", 1}, EnumMember{"selector", 2}),
	sourceItem(AudioNDigital+"."+AudioNSource, ClassOutputs, 0x09,
		EnumMember{AudioNDAC, 0}, EnumMember{"selector", 1}),
	offOnItem("selector."+AudioNMute, ClassOutputs, 0x0a, To(TargetOutAmp)),
	valueItem("selector", ClassOutputs, 0x0a, To(TargetOutAmp), 2),
	offOnItem(AudioNMaster+"."+AudioNMute, ClassOutputs, 0x0b, To(TargetOutAmp)),
	valueItem(AudioNMaster, ClassOutputs, 0x0b, To(TargetOutAmp), 2),
	sourceItem("selector."+AudioNSource, ClassInputs, 0x0c,
		EnumMember{"mic1", 0}, EnumMember{"mic2", 1}, EnumMember{AudioNCD, 4}),
	offOnItem(AudioNHeadphone+".boost", ClassOutputs, stac9200HP, To(TargetPinBoost)),
	offOnItem(AudioNSpeaker+".boost", ClassOutputs, stac9200Speaker, To(TargetPinBoost)),
	offOnItem(AudioNMono+"."+AudioNMute, ClassOutputs, 0x11, To(TargetOutAmp)),
	valueItem(AudioNMono, ClassOutputs, 0x11, To(TargetOutAmp), 1),
	offOnItem("beep."+AudioNMute, ClassOutputs, 0x14, To(TargetOutAmp)),
	valueItem("beep", ClassOutputs, 0x14, To(TargetOutAmp), 1),
	modeItem(ClassPlayback, TargetDAC, AudioNAnalog, AudioNDigital),
	modeItem(ClassRecord, TargetADC, AudioNAnalog, AudioNDigital),
}

type stac9200Ops struct{ genericOps }

func (stac9200Ops) MixerInit(c *Codec) error {
	c.installTable(stac9200Items)

	c.setEnum(stac9200HP, To(TargetPinDir), 1)
	c.setEnum(stac9200Speaker, To(TargetPinDir), 1)
	c.setEnum(0x0f, To(TargetPinDir), 0)
	c.setEnum(0x10, To(TargetPinDir), 0)

	// Capture selector output gain at full scale.
	full := uint8(c.mixerMax(0x0c, To(TargetOutAmp)))
	mc := &MixerCtrl{Dev: -1, Type: MixerValue, Channels: 2, Level: [2]uint8{full, full}}
	if err := c.mixerSet(0x0c, To(TargetOutAmp), mc); err != nil {
		c.log.Debug().Err(err).Msg("capture selector gain not set")
	}

	model, ok := stac9200Dell[c.SubsystemID]
	if !ok {
		return nil
	}

	c.log.Debug().Str("model", model).Msg("headphone sense enabled")

	if err := c.enableUnsol(stac9200HP, stac9200EventHP); err != nil {
		return fmt.Errorf("failed to enable headphone events: %w", err)
	}

	return c.stac9200Speaker()
}

// stac9200Speaker disables the speaker pin while headphones are plugged in.
func (c *Codec) stac9200Speaker() error {
	hp, err := c.pinPresent(stac9200HP)
	if err != nil {
		return err
	}

	dir := AC_PINCTL_OUT_EN
	if hp {
		dir = 0
	}

	return c.pinctrl(stac9200Speaker, dir)
}

func (stac9200Ops) UnsolEvent(c *Codec, tag int) error {
	if tag != stac9200EventHP {
		c.log.Warn().Int("tag", tag).Msg("unknown unsolicited tag")

		return nil
	}

	return c.stac9200Speaker()
}
