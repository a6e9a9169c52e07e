package hda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/hda"
)

func TestSetPortAmplifier(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	gain := ctl(t, codec, "dac02", hda.ClassInputs)
	mute := ctl(t, codec, "dac02.mute", hda.ClassInputs)

	t.Run("GainKeepsMute", func(t *testing.T) {
		setEnum(t, codec, mute, 1)
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{3, 1}}))

		m, g := sim.Amp(0x02, true, 0, false)
		assert.True(t, m, "left mute survives a gain write")
		assert.Equal(t, uint32(3), g)

		m, g = sim.Amp(0x02, true, 0, true)
		assert.True(t, m, "right mute survives a gain write")
		assert.Equal(t, uint32(1), g)
	})

	t.Run("MuteKeepsGain", func(t *testing.T) {
		setEnum(t, codec, mute, 0)

		m, g := sim.Amp(0x02, true, 0, false)
		assert.False(t, m)
		assert.Equal(t, uint32(3), g, "gain survives a mute write")

		assert.Equal(t, 0, getEnum(t, codec, mute))
		assert.Equal(t, [2]uint8{3, 1}, getValue(t, codec, gain).Level)
	})

	t.Run("SingleChannel", func(t *testing.T) {
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 1, Level: [2]uint8{1}}))
		assert.Equal(t, [2]uint8{1, 1}, getValue(t, codec, gain).Level, "one level applies to both channels")
	})

	t.Run("InputIndex", func(t *testing.T) {
		mic := ctl(t, codec, "mix0b.mic.front", hda.ClassMix)
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: mic.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{31, 0}}))

		_, g := sim.Amp(0x0b, false, 1, false)
		assert.Equal(t, uint32(31), g)
		_, g = sim.Amp(0x0b, false, 1, true)
		assert.Equal(t, uint32(0), g)
		_, g = sim.Amp(0x0b, false, 0, false)
		assert.Equal(t, uint32(16), g, "other input amplifiers are untouched")
	})
}

func TestSetPortPin(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	t.Run("Direction", func(t *testing.T) {
		dir := ctl(t, codec, "mic.front.dir", hda.ClassOutputs)
		setEnum(t, codec, dir, 0)

		assert.Equal(t, 0, getEnum(t, codec, dir))
		assert.Equal(t, hda.AC_PINCTL_IN_EN, sim.PinControl(0x0f)&(hda.AC_PINCTL_IN_EN|hda.AC_PINCTL_OUT_EN))
	})

	t.Run("Boost", func(t *testing.T) {
		boost := ctl(t, codec, "hp.boost", hda.ClassOutputs)
		_, err := sim.Command(0x0d, hda.AC_VERB_SET_PIN_WIDGET_CONTROL, hda.AC_PINCTL_OUT_EN|hda.AC_PINCTL_HP_EN)
		require.NoError(t, err)

		setEnum(t, codec, boost, 0)
		assert.Zero(t, sim.PinControl(0x0d)&hda.AC_PINCTL_HP_EN)
		assert.NotZero(t, sim.PinControl(0x0d)&hda.AC_PINCTL_OUT_EN, "boost leaves the direction alone")

		setEnum(t, codec, boost, 1)
		assert.NotZero(t, sim.PinControl(0x0d)&hda.AC_PINCTL_HP_EN)
		assert.Equal(t, 1, getEnum(t, codec, boost))
	})

	t.Run("EAPD", func(t *testing.T) {
		eapd := ctl(t, codec, "ispkr.eapd", hda.ClassOutputs)
		setEnum(t, codec, eapd, 1)
		assert.Equal(t, 1, getEnum(t, codec, eapd))

		setEnum(t, codec, eapd, 0)
		assert.Equal(t, 0, getEnum(t, codec, eapd))
	})

	t.Run("LRSwap", func(t *testing.T) {
		swap := ctl(t, codec, "adc05.lrswap", hda.ClassRecord)
		setEnum(t, codec, swap, 1)
		assert.Equal(t, 1, getEnum(t, codec, swap))
	})
}

func TestSetPortSource(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	src := ctl(t, codec, "hp.source", hda.ClassOutputs)
	assert.Equal(t, 1, getEnum(t, codec, src), "hardware default selection")

	setEnum(t, codec, src, 0)
	assert.Equal(t, 0, getEnum(t, codec, src))
	assert.Equal(t, 0, codec.Widget(0x0d).Selected)

	sim.ResetLog()
	err := codec.SetPort(&hda.MixerCtrl{Dev: src.Info.Index, Type: hda.MixerEnum, Ord: 2})
	assert.ErrorIs(t, err, hda.ErrInvalid, "selection past the connection list")
	assert.Empty(t, sim.Writes())

	sel := ctl(t, codec, "sel0c.source", hda.ClassInputs)
	setEnum(t, codec, sel, 2)
	assert.Equal(t, 2, getEnum(t, codec, sel))

	sim.ResetLog()
	err = codec.SetPort(&hda.MixerCtrl{Dev: sel.Info.Index, Type: hda.MixerEnum, Ord: 1})
	assert.ErrorIs(t, err, hda.ErrInvalid, "the unconnected cd pin cannot be selected")
	assert.Empty(t, sim.Writes())
	assert.Equal(t, 2, getEnum(t, codec, sel))
	assert.Equal(t, 2, codec.Widget(0x0c).Selected)
}

func TestSetPortSPDIF(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	bits := ctl(t, codec, "dac03.spdif", hda.ClassPlayback)
	assert.Equal(t, hda.MixerSet, bits.Info.Type)
	cc := ctl(t, codec, "dac03.spdif.cc", hda.ClassPlayback)

	digital := func() uint32 {
		resp, err := sim.Command(0x03, hda.AC_VERB_GET_DIGI_CONVERT_1, 0)
		require.NoError(t, err)

		return resp
	}

	_, err := sim.Command(0x03, hda.AC_VERB_SET_DIGI_CONVERT_1, hda.AC_DIG1_ENABLE|hda.AC_DIG1_NONAUDIO)
	require.NoError(t, err)

	t.Run("Bits", func(t *testing.T) {
		mask := hda.AC_DIG1_V | hda.AC_DIG1_COPYRIGHT | hda.AC_DIG1_ENABLE
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: bits.Info.Index, Type: hda.MixerSet, Mask: mask}))
		assert.Equal(t, hda.AC_DIG1_ENABLE|hda.AC_DIG1_NONAUDIO|hda.AC_DIG1_V|hda.AC_DIG1_COPYRIGHT, digital()&0xff,
			"enable and non-audio keep their hardware state")

		mc := &hda.MixerCtrl{Dev: bits.Info.Index, Type: hda.MixerSet}
		require.NoError(t, codec.GetPort(mc))
		assert.Equal(t, hda.AC_DIG1_V|hda.AC_DIG1_COPYRIGHT, mc.Mask)

		value, err := codec.FormatValue(bits.Info.Index)
		require.NoError(t, err)
		assert.Equal(t, "[v,copy]", value)

		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: bits.Info.Index, Type: hda.MixerSet}))
		assert.Equal(t, hda.AC_DIG1_ENABLE|hda.AC_DIG1_NONAUDIO, digital()&0xff)
	})

	t.Run("CategoryCode", func(t *testing.T) {
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: cc.Info.Index, Type: hda.MixerValue, Channels: 1, Level: [2]uint8{127}}))
		assert.Equal(t, uint8(127), getValue(t, codec, cc).Level[0])
		assert.Equal(t, uint32(127), digital()>>hda.AC_DIG2_CC_SHIFT&hda.AC_DIG2_CC_MASK)
		assert.Equal(t, hda.AC_DIG1_ENABLE|hda.AC_DIG1_NONAUDIO, digital()&0xff, "the control bits are untouched")

		sim.ResetLog()
		err := codec.SetPort(&hda.MixerCtrl{Dev: cc.Info.Index, Type: hda.MixerValue, Channels: 1, Level: [2]uint8{128}})
		assert.ErrorIs(t, err, hda.ErrInvalid, "category codes are 7 bits")
		err = codec.SetPort(&hda.MixerCtrl{Dev: cc.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{1, 1}})
		assert.ErrorIs(t, err, hda.ErrInvalid)
		assert.Empty(t, sim.Writes())
		assert.Equal(t, uint8(127), getValue(t, codec, cc).Level[0])
	})

	t.Run("ReadFailure", func(t *testing.T) {
		sim.Fail(0x03, hda.AC_VERB_GET_DIGI_CONVERT_1)
		defer sim.Recover()

		sim.ResetLog()
		err := codec.SetPort(&hda.MixerCtrl{Dev: bits.Info.Index, Type: hda.MixerSet, Mask: hda.AC_DIG1_V})
		assert.ErrorIs(t, err, hda.ErrInjected)
		assert.Empty(t, sim.Writes(), "nothing is written when the read fails")
	})
}

func TestInputAmplifierIndex(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)
	unmute := &hda.MixerCtrl{Type: hda.MixerEnum, Ord: 0}

	sim.ResetLog()
	assert.ErrorIs(t, codec.SetTarget(0x0b, hda.InAmp(3), unmute), hda.ErrInvalid, "mix0b has three connections")
	assert.ErrorIs(t, codec.SetTarget(0x05, hda.InAmp(1), unmute), hda.ErrInvalid, "adc05 has one connection")
	assert.ErrorIs(t, codec.SetTarget(0x0b, hda.InAmp(-1), unmute), hda.ErrInvalid)
	assert.Empty(t, sim.Writes())

	assert.NoError(t, codec.SetTarget(0x0b, hda.InAmp(2), unmute))
	assert.NoError(t, codec.SetTarget(0x05, hda.InAmp(0), unmute))
}

func TestSetPortVolumeKnob(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	knob := ctl(t, codec, "volume12", hda.ClassOutputs)
	require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: knob.Info.Index, Type: hda.MixerValue, Channels: 1, Level: [2]uint8{12}}))
	assert.Equal(t, uint8(12), getValue(t, codec, knob).Level[0])

	var direct bool
	for _, cmd := range sim.Writes() {
		if cmd.Nid == 0x12 && cmd.Verb == hda.AC_VERB_SET_VOLUME_KNOB_CONTROL && cmd.Payload == hda.AC_KNB_DIRECT|12 {
			direct = true
		}
	}
	assert.True(t, direct, "knob writes take effect immediately")

	err := codec.SetPort(&hda.MixerCtrl{Dev: knob.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{1, 1}})
	assert.ErrorIs(t, err, hda.ErrInvalid, "the knob has one channel")
}

// Invalid requests fail before anything is written to the codec.
func TestSetPortValidation(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	gain := ctl(t, codec, "dac02", hda.ClassInputs)
	mute := ctl(t, codec, "dac02.mute", hda.ClassInputs)
	dir := ctl(t, codec, "mic.front.dir", hda.ClassOutputs)

	cases := []struct {
		name string
		mc   hda.MixerCtrl
		err  error
	}{
		{"NoChannels", hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 0}, hda.ErrInvalid},
		{"ThreeChannels", hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 3}, hda.ErrInvalid},
		{"LeftOutOfRange", hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{4, 0}}, hda.ErrInvalid},
		{"RightOutOfRange", hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{0, 200}}, hda.ErrInvalid},
		{"MuteOrdinal", hda.MixerCtrl{Dev: mute.Info.Index, Type: hda.MixerEnum, Ord: 2}, hda.ErrInvalid},
		{"NegativeOrdinal", hda.MixerCtrl{Dev: dir.Info.Index, Type: hda.MixerEnum, Ord: -1}, hda.ErrInvalid},
		{"WrongKind", hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerEnum}, hda.ErrInvalid},
		{"IndexTooLarge", hda.MixerCtrl{Dev: codec.NumCtls(), Type: hda.MixerEnum}, hda.ErrNoDevice},
		{"NegativeIndex", hda.MixerCtrl{Dev: -1, Type: hda.MixerEnum}, hda.ErrNoDevice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sim.ResetLog()

			mc := tc.mc
			err := codec.SetPort(&mc)
			assert.ErrorIs(t, err, tc.err)
			assert.Empty(t, sim.Writes(), "nothing is written for an invalid request")
		})
	}

	t.Run("Unchanged", func(t *testing.T) {
		assert.Equal(t, [2]uint8{2, 2}, getValue(t, codec, gain).Level)
		assert.Equal(t, 0, getEnum(t, codec, mute))
	})
}

func TestPortClass(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)
	sim.ResetLog()

	mc := &hda.MixerCtrl{Dev: hda.ClassOutputs, Type: hda.MixerClass}
	assert.NoError(t, codec.GetPort(mc), "classes read as no-ops")
	assert.NoError(t, codec.SetPort(mc), "classes write as no-ops")
	assert.Empty(t, sim.Commands())
}

func TestTransportErrors(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)
	gain := ctl(t, codec, "dac02", hda.ClassInputs)

	t.Run("ReadHalf", func(t *testing.T) {
		sim.ResetLog()
		sim.Fail(0x02, hda.AC_VERB_GET_AMP_GAIN_MUTE)
		defer sim.Recover()

		err := codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{3, 3}})
		assert.ErrorIs(t, err, hda.ErrInjected)
		assert.Empty(t, sim.Writes(), "a failed read aborts the write")

		err = codec.GetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue})
		assert.ErrorIs(t, err, hda.ErrInjected)
	})

	t.Run("WriteHalf", func(t *testing.T) {
		sim.Fail(0x02, hda.AC_VERB_SET_AMP_GAIN_MUTE)
		defer sim.Recover()

		err := codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{3, 3}})
		assert.ErrorIs(t, err, hda.ErrInjected)
	})

	t.Run("PinSense", func(t *testing.T) {
		sim.Fail(0x0d, hda.AC_VERB_GET_PIN_SENSE)
		defer sim.Recover()

		_, err := codec.PinPresent(0x0d)
		assert.ErrorIs(t, err, hda.ErrInjected)
	})

	t.Run("Recovered", func(t *testing.T) {
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{3, 3}}))
		assert.Equal(t, [2]uint8{3, 3}, getValue(t, codec, gain).Level)
	})
}

func TestGroupSelect(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	mode := ctl(t, codec, "mode", hda.ClassPlayback)
	record := ctl(t, codec, "mode", hda.ClassRecord)

	t.Run("BusyWhileStreaming", func(t *testing.T) {
		codec.SetStreaming(true)
		defer codec.SetStreaming(false)

		err := codec.SetPort(&hda.MixerCtrl{Dev: mode.Info.Index, Type: hda.MixerEnum, Ord: 1})
		assert.ErrorIs(t, err, hda.ErrBusy)
		assert.Equal(t, 0, codec.DACs.Cur, "the active group is unchanged")
		assert.Equal(t, 0, getEnum(t, codec, mode))
	})

	t.Run("Select", func(t *testing.T) {
		setEnum(t, codec, mode, 1)
		assert.Equal(t, 1, codec.DACs.Cur)
		assert.Equal(t, hda.ConvGroup{0x03}, codec.DACs.Current())
		assert.Equal(t, 1, getEnum(t, codec, mode))

		setEnum(t, codec, record, 1)
		assert.Equal(t, 1, codec.ADCs.Cur)
		assert.Equal(t, 1, codec.DACs.Cur, "selecting the record group keeps the playback group")
		assert.NotEmpty(t, codec.Formats())
	})

	t.Run("OutOfRange", func(t *testing.T) {
		err := codec.SetPort(&hda.MixerCtrl{Dev: mode.Info.Index, Type: hda.MixerEnum, Ord: 3})
		assert.ErrorIs(t, err, hda.ErrInvalid)
		assert.Equal(t, 1, codec.DACs.Cur)
	})
}

func TestScalingRoundTrip(t *testing.T) {
	t.Run("Raw", func(t *testing.T) {
		codec, _ := attach(t, "generic.yaml", &hda.Config{Scale: hda.ScaleRaw})
		gain := ctl(t, codec, "sel0c", hda.ClassOutputs)

		for x := 0; x <= 15; x++ {
			require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 2, Level: [2]uint8{uint8(x), uint8(x)}}))
			assert.Equal(t, [2]uint8{uint8(x), uint8(x)}, getValue(t, codec, gain).Level, "level %d", x)
		}

		err := codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 1, Level: [2]uint8{16}})
		assert.ErrorIs(t, err, hda.ErrInvalid, "raw levels are bounded by the step count")
	})

	t.Run("Max255", func(t *testing.T) {
		codec, sim := attach(t, "generic.yaml", &hda.Config{Scale: hda.ScaleMax255})

		for label, steps := range map[string]uint32{"dac02": 3, "sel0c": 15} {
			class := hda.ClassOutputs
			if label == "dac02" {
				class = hda.ClassInputs
			}

			roundTrip(t, codec, ctl(t, codec, label, class), steps)
		}

		_, g := sim.Amp(0x02, true, 0, false)
		assert.Equal(t, uint32(3), g, "255 maps to the top step")
	})

	t.Run("Max255UnevenSteps", func(t *testing.T) {
		for _, steps := range []uint32{0x27, 0x57, 0x7f} {
			codec, sim := attachDesc(t, hda.SimCodec{
				VendorID: 0x10ec0888,
				Widgets: []hda.SimWidget{
					{Nid: 0x02, Type: "dac", Stereo: true, OutAmp: &hda.SimAmp{Steps: steps}},
				},
			}, &hda.Config{Scale: hda.ScaleMax255})

			gain := ctl(t, codec, "dac02", hda.ClassInputs)
			roundTrip(t, codec, gain, steps)

			_, g := sim.Amp(0x02, true, 0, false)
			assert.Equal(t, steps, g, "255 maps to the top of %d steps", steps)
			assert.Equal(t, uint8(255), getValue(t, codec, gain).Level[0])
		}
	})
}

// roundTrip sets every normalized level and checks the read back level lies
// within one device step of it.
func roundTrip(t *testing.T, codec *hda.Codec, gain hda.MixerItem, steps uint32) {
	t.Helper()

	step := 255.0 / float64(steps)
	for x := 0; x <= 255; x++ {
		require.NoError(t, codec.SetPort(&hda.MixerCtrl{Dev: gain.Info.Index, Type: hda.MixerValue, Channels: 1, Level: [2]uint8{uint8(x)}}))

		got := getValue(t, codec, gain).Level[0]
		assert.InDelta(t, x, int(got), step, "%s level %d", gain.Info.Label, x)
	}
}

func TestFormatValue(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	cases := map[string]string{
		"dac02":      "2,2",
		"dac02.mute": "off",
		"hp.source":  "dac02",
	}

	for label, want := range cases {
		m, err := codec.CtlByName(label)
		require.NoError(t, err)

		got, err := codec.FormatValue(m.Info.Index)
		require.NoError(t, err)
		assert.Equal(t, want, got, "value of %s", label)
	}

	got, err := codec.FormatValue(hda.ClassInputs)
	require.NoError(t, err)
	assert.Empty(t, got, "classes have no value")

	_, err = codec.FormatValue(codec.NumCtls())
	assert.ErrorIs(t, err, hda.ErrNoDevice)
}

func TestParseValue(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	src, err := codec.CtlByName("hp.source")
	require.NoError(t, err)

	mc, err := codec.ParseValue(src.Info.Index, "mix0b")
	require.NoError(t, err)
	assert.Equal(t, hda.MixerEnum, mc.Type)
	assert.Equal(t, 0, mc.Ord)

	require.NoError(t, codec.SetPort(mc))
	got, err := codec.FormatValue(src.Info.Index)
	require.NoError(t, err)
	assert.Equal(t, "mix0b", got)

	mc, err = codec.ParseValue(src.Info.Index, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, mc.Ord, "ordinals are accepted")

	_, err = codec.ParseValue(src.Info.Index, "speaker")
	assert.ErrorIs(t, err, hda.ErrInvalid)

	gain, err := codec.CtlByName("dac02")
	require.NoError(t, err)

	mc, err = codec.ParseValue(gain.Info.Index, "3,1")
	require.NoError(t, err)
	assert.Equal(t, 2, mc.Channels)
	assert.Equal(t, [2]uint8{3, 1}, mc.Level)

	mc, err = codec.ParseValue(gain.Info.Index, "1")
	require.NoError(t, err)
	assert.Equal(t, [2]uint8{1, 1}, mc.Level, "one level fills both channels")

	for _, bad := range []string{"1,2,3", "x", "256"} {
		_, err = codec.ParseValue(gain.Info.Index, bad)
		assert.ErrorIs(t, err, hda.ErrInvalid, "value %q", bad)
	}

	_, err = codec.ParseValue(hda.ClassInputs, "on")
	assert.ErrorIs(t, err, hda.ErrInvalid, "classes take no value")
}
