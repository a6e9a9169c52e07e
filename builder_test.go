package hda_test

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/hda"
)

func TestMixerTableOrder(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	expected := []struct {
		label string
		typ   hda.MixerType
		class int
		nid   hda.Nid
		tgt   hda.Target
	}{
		{"inputs", hda.MixerClass, hda.ClassInputs, 0, hda.Target{}},
		{"outputs", hda.MixerClass, hda.ClassOutputs, 0, hda.Target{}},
		{"record", hda.MixerClass, hda.ClassRecord, 0, hda.Target{}},
		{"playback", hda.MixerClass, hda.ClassPlayback, 0, hda.Target{}},
		{"mix", hda.MixerClass, hda.ClassMix, 0, hda.Target{}},
		{"dac02.mute", hda.MixerEnum, hda.ClassInputs, 0x02, hda.To(hda.TargetOutAmp)},
		{"dac02", hda.MixerValue, hda.ClassInputs, 0x02, hda.To(hda.TargetOutAmp)},
		{"dac03.spdif", hda.MixerSet, hda.ClassPlayback, 0x03, hda.To(hda.TargetSPDIF)},
		{"dac03.spdif.cc", hda.MixerValue, hda.ClassPlayback, 0x03, hda.To(hda.TargetSPDIFCC)},
		{"adc05.mute", hda.MixerEnum, hda.ClassRecord, 0x05, hda.InAmp(0)},
		{"adc05", hda.MixerValue, hda.ClassRecord, 0x05, hda.InAmp(0)},
		{"adc05.lrswap", hda.MixerEnum, hda.ClassRecord, 0x05, hda.To(hda.TargetLRSwap)},
		{"mix0b.dac02.mut", hda.MixerEnum, hda.ClassMix, 0x0b, hda.InAmp(0)},
		{"mix0b.mint.mute", hda.MixerEnum, hda.ClassMix, 0x0b, hda.InAmp(1)},
		{"mix0b.dac02", hda.MixerValue, hda.ClassMix, 0x0b, hda.InAmp(0)},
		{"mix0b.mic.front", hda.MixerValue, hda.ClassMix, 0x0b, hda.InAmp(1)},
		{"sel0c.source", hda.MixerEnum, hda.ClassInputs, 0x0c, hda.To(hda.TargetConnList)},
		{"sel0c.mute", hda.MixerEnum, hda.ClassOutputs, 0x0c, hda.To(hda.TargetOutAmp)},
		{"sel0c", hda.MixerValue, hda.ClassOutputs, 0x0c, hda.To(hda.TargetOutAmp)},
		{"hp.source", hda.MixerEnum, hda.ClassOutputs, 0x0d, hda.To(hda.TargetConnList)},
		{"hp.mute", hda.MixerEnum, hda.ClassOutputs, 0x0d, hda.To(hda.TargetOutAmp)},
		{"hp.boost", hda.MixerEnum, hda.ClassOutputs, 0x0d, hda.To(hda.TargetPinBoost)},
		{"ispkr.mute", hda.MixerEnum, hda.ClassOutputs, 0x0e, hda.To(hda.TargetOutAmp)},
		{"ispkr.eapd", hda.MixerEnum, hda.ClassOutputs, 0x0e, hda.To(hda.TargetEAPD)},
		{"mic.front.dir", hda.MixerEnum, hda.ClassOutputs, 0x0f, hda.To(hda.TargetPinDir)},
		{"volume12", hda.MixerValue, hda.ClassOutputs, 0x12, hda.To(hda.TargetVolume)},
		{"mode", hda.MixerEnum, hda.ClassPlayback, 0x02, hda.To(hda.TargetDAC)},
		{"mode", hda.MixerEnum, hda.ClassRecord, 0x05, hda.To(hda.TargetADC)},
	}

	require.Equal(t, len(expected), codec.NumCtls(), "number of controls")

	for i, e := range expected {
		m, err := codec.Ctl(i)
		require.NoError(t, err)

		assert.Equal(t, e.label, m.Info.Label, "label of control %d", i)
		assert.Equal(t, e.typ, m.Info.Type, "type of control %d", i)
		assert.Equal(t, e.class, m.Info.Class, "class of control %d", i)
		assert.Equal(t, e.nid, m.Nid, "widget of control %d", i)
		assert.Equal(t, e.tgt, m.Target, "target of control %d", i)
	}

	_, err := codec.Ctl(len(expected))
	assert.ErrorIs(t, err, hda.ErrNoDevice)
}

func TestMixerMembers(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	sel := ctl(t, codec, "sel0c.source", hda.ClassInputs)
	assert.Equal(t, []hda.EnumMember{{Label: "mic.front", Ord: 0}, {Label: "mix0b", Ord: 2}}, sel.Info.Members,
		"the unconnected cd pin is not a source")

	hp := ctl(t, codec, "hp.source", hda.ClassOutputs)
	assert.Equal(t, []hda.EnumMember{{Label: "mix0b", Ord: 0}, {Label: "dac02", Ord: 1}}, hp.Info.Members)

	mute := ctl(t, codec, "dac02.mute", hda.ClassInputs)
	assert.Equal(t, []hda.EnumMember{{Label: "off", Ord: 0}, {Label: "on", Ord: 1}}, mute.Info.Members)

	dir := ctl(t, codec, "mic.front.dir", hda.ClassOutputs)
	assert.Equal(t, []hda.EnumMember{{Label: "input", Ord: 0}, {Label: "output", Ord: 1}}, dir.Info.Members)

	mode := ctl(t, codec, "mode", hda.ClassPlayback)
	assert.Equal(t, []hda.EnumMember{{Label: "02", Ord: 0}, {Label: "03", Ord: 1}, {Label: "04", Ord: 2}}, mode.Info.Members,
		"mode members are labeled with the converter ids of each group")

	gain := ctl(t, codec, "dac02", hda.ClassInputs)
	assert.Equal(t, 2, gain.Info.Channels)
	assert.Equal(t, 1, gain.Info.Delta, "raw scaling moves one step at a time")
	assert.Equal(t, "0.25x12dB", gain.Info.Units)

	knob := ctl(t, codec, "volume12", hda.ClassOutputs)
	assert.Equal(t, 1, knob.Info.Channels)
}

func TestSelectorBoundary(t *testing.T) {
	build := func(connectivity string) *hda.Codec {
		codec, _ := attachDesc(t, hda.SimCodec{
			VendorID: 0x10ec0888,
			Widgets: []hda.SimWidget{
				{Nid: 0x02, Type: "dac"},
				{Nid: 0x03, Type: "pin", Pin: &hda.SimPin{Input: true, Device: "linein", Connectivity: connectivity}},
				{Nid: 0x04, Type: "selector", Connections: []hda.Nid{0x02, 0x03}},
			},
		})

		return codec
	}

	_, err := build("none").CtlByName("sel04.source")
	assert.Error(t, err, "one usable source gets no selector")

	_, err = build("jack").CtlByName("sel04.source")
	assert.NoError(t, err)
}

func TestMixerDenseIndexes(t *testing.T) {
	for _, name := range []string{"generic.yaml", "ad1983.yaml", "alc260.yaml", "stac9200.yaml", "stac9221.yaml"} {
		t.Run(name, func(t *testing.T) {
			codec, _ := attach(t, name, nil)
			require.Greater(t, codec.NumCtls(), 5, "the table holds more than the class items")

			for i := 0; i < codec.NumCtls(); i++ {
				info, err := codec.QueryDevInfo(i)
				require.NoError(t, err)

				assert.Equal(t, i, info.Index, "index of control %d", i)
				assert.Equal(t, hda.MixerLast, info.Prev, "prev of control %d", i)
				assert.Equal(t, hda.MixerLast, info.Next, "next of control %d", i)
				assert.Less(t, len(info.Label), hda.MaxLabelLen, "label of control %d fits", i)
			}

			for class := hda.ClassInputs; class <= hda.ClassMix; class++ {
				info, err := codec.QueryDevInfo(class)
				require.NoError(t, err)
				assert.Equal(t, hda.MixerClass, info.Type, "control %d is a class", class)
			}

			_, err := codec.QueryDevInfo(codec.NumCtls())
			assert.ErrorIs(t, err, hda.ErrNoDevice)

			_, err = codec.QueryDevInfo(-1)
			assert.ErrorIs(t, err, hda.ErrNoDevice)
		})
	}
}

// Every generated control must address a capability the widget actually has.
func TestMixerCapabilities(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	for _, m := range codec.Ctls() {
		if m.Info.Type == hda.MixerClass {
			continue
		}

		if m.Target.Kind == hda.TargetDAC || m.Target.Kind == hda.TargetADC {
			continue
		}

		w := codec.Widget(m.Nid)
		require.NotNil(t, w, "control %s references a widget", m.Info.Label)
		assert.False(t, w.Unconnected(), "control %s on an unconnected pin", m.Info.Label)

		switch m.Target.Kind {
		case hda.TargetOutAmp:
			assert.True(t, w.HasOutAmp(), "%s needs an output amplifier", m.Info.Label)
			if m.Info.Type == hda.MixerEnum {
				assert.True(t, w.OutAmp.Mute(), "%s needs a mute capable amplifier", m.Info.Label)
			} else {
				assert.Greater(t, w.OutAmp.NumSteps(), uint32(0), "%s needs gain steps", m.Info.Label)
			}
		case hda.TargetInAmp:
			assert.True(t, w.HasInAmp(), "%s needs an input amplifier", m.Info.Label)
			if w.Type == hda.AC_WID_AUD_MIX || w.Type == hda.AC_WID_AUD_SEL {
				assert.Less(t, m.Target.Index, len(w.Connections), "%s addresses a connection", m.Info.Label)
			} else {
				assert.Equal(t, 0, m.Target.Index, "%s uses index 0", m.Info.Label)
			}
			if m.Info.Type == hda.MixerEnum {
				assert.True(t, w.InAmp.Mute(), "%s needs a mute capable amplifier", m.Info.Label)
			} else {
				assert.Greater(t, w.InAmp.NumSteps(), uint32(0), "%s needs gain steps", m.Info.Label)
			}
		case hda.TargetConnList:
			assert.NotEqual(t, hda.AC_WID_AUD_MIX, w.Type, "%s on a mixer", m.Info.Label)
			assert.GreaterOrEqual(t, len(m.Info.Members), 2, "%s has at least two sources", m.Info.Label)
		case hda.TargetPinDir:
			assert.True(t, w.Pin.Cap.Input() && w.Pin.Cap.Output(), "%s needs a bidirectional pin", m.Info.Label)
		case hda.TargetPinBoost:
			assert.True(t, w.Pin.Cap.Headphone(), "%s needs a headphone amplifier", m.Info.Label)
		case hda.TargetEAPD:
			assert.True(t, w.Pin.Cap.EAPD(), "%s needs EAPD", m.Info.Label)
		case hda.TargetBalance:
			assert.True(t, w.Pin.Cap.Balanced(), "%s needs balanced I/O", m.Info.Label)
		case hda.TargetLRSwap:
			assert.True(t, w.LRSwap(), "%s needs L/R swap", m.Info.Label)
		case hda.TargetSPDIF, hda.TargetSPDIFCC:
			assert.Equal(t, hda.AC_WID_AUD_OUT, w.Type, "%s needs a converter", m.Info.Label)
			assert.True(t, w.Digital(), "%s needs a digital converter", m.Info.Label)
		case hda.TargetVolume:
			assert.Equal(t, hda.AC_WID_VOL_KNB, w.Type, "%s needs a volume knob", m.Info.Label)
			assert.True(t, w.Knob.Delta(), "%s needs a direct knob", m.Info.Label)
		default:
			t.Errorf("unexpected target %s on %s", m.Target, m.Info.Label)
		}
	}
}

// A widget with a mute capable output amplifier of four steps gets exactly one
// mute and one gain control, unmuted and at step 2 after the defaults.
func TestMixerDefaults(t *testing.T) {
	codec, sim := attach(t, "generic.yaml", nil)

	var mutes, gains []hda.MixerItem
	for _, m := range codec.Ctls() {
		if m.Nid != 0x02 || m.Target != hda.To(hda.TargetOutAmp) {
			continue
		}

		if m.Info.Type == hda.MixerEnum {
			mutes = append(mutes, m)
		} else {
			gains = append(gains, m)
		}
	}

	require.Len(t, mutes, 1, "one mute control")
	require.Len(t, gains, 1, "one gain control")

	assert.Equal(t, 0, getEnum(t, codec, mutes[0]), "mute control is off")

	mc := getValue(t, codec, gains[0])
	assert.Equal(t, 2, mc.Channels)
	assert.Equal(t, [2]uint8{2, 2}, mc.Level, "gain is at the midpoint of 0..3")

	for _, right := range []bool{false, true} {
		mute, gain := sim.Amp(0x02, true, 0, right)
		assert.False(t, mute, "hardware amplifier is unmuted")
		assert.Equal(t, uint32(2), gain, "hardware gain is step 2")
	}

	t.Run("InputAmplifiers", func(t *testing.T) {
		mute, gain := sim.Amp(0x0b, false, 1, false)
		assert.False(t, mute)
		assert.Equal(t, uint32(16), gain, "midpoint of 0..31")

		mute, _ = sim.Amp(0x0b, false, 2, false)
		assert.False(t, mute, "the unconnected source has no control and keeps its reset state")
	})

	t.Run("PinDirection", func(t *testing.T) {
		dir := ctl(t, codec, "mic.front.dir", hda.ClassOutputs)
		assert.Equal(t, 1, getEnum(t, codec, dir), "bidirectional pins default to output")
		assert.NotZero(t, sim.PinControl(0x0f)&hda.AC_PINCTL_OUT_EN)
		assert.Zero(t, sim.PinControl(0x0f)&hda.AC_PINCTL_IN_EN)
	})

	t.Run("VolumeKnob", func(t *testing.T) {
		knob := ctl(t, codec, "volume12", hda.ClassOutputs)
		mc := getValue(t, codec, knob)
		assert.Equal(t, 1, mc.Channels)
		assert.Equal(t, uint8(8), mc.Level[0], "midpoint of 0..15")
	})
}

func TestMixerDefaultsMax255(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", &hda.Config{Scale: hda.ScaleMax255})

	gain := ctl(t, codec, "dac02", hda.ClassInputs)
	assert.Equal(t, 85, gain.Info.Delta, "255 spread over 3 steps")
	assert.Empty(t, gain.Info.Units)

	mc := getValue(t, codec, gain)
	assert.Equal(t, [2]uint8{170, 170}, mc.Level, "step 2 scaled to 0..255")
}

func TestConverterGroups(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	// Association 1 holds an analog pin at sequence 0 and a digital pin at
	// sequence 1; they form separate groups. The speaker of association 2 reaches
	// the same converter as the headphone and its group is dropped as a duplicate.
	assert.Equal(t, []hda.ConvGroup{{0x02}, {0x03}, {0x04}}, codec.DACs.Groups)
	assert.Equal(t, []hda.ConvGroup{{0x05}, {0x06}}, codec.ADCs.Groups)
	assert.Equal(t, 0, codec.DACs.Cur)
	assert.Equal(t, 0, codec.ADCs.Cur)
	assert.Equal(t, hda.ConvGroup{0x02}, codec.DACs.Current())

	for i, a := range codec.DACs.Groups {
		for j, b := range codec.DACs.Groups {
			if i != j {
				assert.False(t, a.Equal(b), "groups %d and %d are identical", i, j)
			}
		}
	}

	again, _ := attach(t, "generic.yaml", nil)
	assert.Equal(t, codec.DACs, again.DACs, "grouping is deterministic")
	assert.Equal(t, codec.ADCs, again.ADCs)
}

func TestConverterGroupsEmpty(t *testing.T) {
	codec, _ := attachDesc(t, hda.SimCodec{
		VendorID: 0x10ec0888,
		Widgets: []hda.SimWidget{
			{Nid: 0x02, Type: "mixer"},
			{Nid: 0x03, Type: "pin", Connections: []hda.Nid{0x02}, Pin: &hda.SimPin{Output: true}},
		},
	})

	assert.Empty(t, codec.DACs.Groups, "no converters is not an error")
	assert.Nil(t, codec.DACs.Current())
	assert.Empty(t, codec.Formats())

	_, err := codec.CtlByNameAndClass("mode", hda.ClassPlayback)
	assert.ErrorIs(t, err, hda.ErrNotFound, "no mode control without groups")
}

func TestConvGroupSet(t *testing.T) {
	set := hda.ConvGroupSet{Groups: []hda.ConvGroup{{0x02, 0x03}, {0x04}}}

	assert.True(t, set.Contains(hda.ConvGroup{0x02, 0x03}))
	assert.False(t, set.Contains(hda.ConvGroup{0x03, 0x02}), "order matters")
	assert.True(t, hda.ConvGroup{0x02, 0x03}.Contains(0x03))
	assert.False(t, hda.ConvGroup{0x02, 0x03}.Contains(0x04))

	set.Cur = 5
	assert.Nil(t, set.Current())
}

func TestResolveDAC(t *testing.T) {
	t.Run("BaseCase", func(t *testing.T) {
		codec, _ := attach(t, "generic.yaml", nil)

		for _, nid := range []hda.Nid{0x02, 0x03, 0x04} {
			dac, ok := codec.ResolveDAC(nid)
			assert.True(t, ok)
			assert.Equal(t, nid, dac, "a converter resolves to itself")
		}

		dac, ok := codec.ResolveDAC(0x11)
		assert.True(t, ok)
		assert.Equal(t, hda.Nid(0x03), dac)

		_, ok = codec.ResolveDAC(0x0f)
		assert.False(t, ok, "a pin without connections reaches nothing")

		_, ok = codec.ResolveDAC(0x7f)
		assert.False(t, ok, "a missing widget reaches nothing")
	})

	t.Run("SelectedFirst", func(t *testing.T) {
		for sel, want := range []hda.Nid{0x02, 0x03} {
			codec, _ := attachDesc(t, hda.SimCodec{
				VendorID: 0x10ec0888,
				Widgets: []hda.SimWidget{
					{Nid: 0x02, Type: "dac"},
					{Nid: 0x03, Type: "dac"},
					{Nid: 0x04, Type: "selector", Connections: []hda.Nid{0x02, 0x03}, Selected: sel},
				},
			})

			dac, ok := codec.ResolveDAC(0x04)
			assert.True(t, ok)
			assert.Equal(t, want, dac, "the selected connection wins")
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		codec, _ := attachDesc(t, hda.SimCodec{
			VendorID: 0x10ec0888,
			Widgets: []hda.SimWidget{
				{Nid: 0x02, Type: "selector", Connections: []hda.Nid{0x03}},
				{Nid: 0x03, Type: "selector", Connections: []hda.Nid{0x02, 0x04}},
				{Nid: 0x04, Type: "mixer", Connections: []hda.Nid{0x03, 0x02}},
				{Nid: 0x05, Type: "pin", Connections: []hda.Nid{0x02}},
				{Nid: 0x06, Type: "dac"},
			},
		})

		_, ok := codec.ResolveDAC(0x05)
		assert.False(t, ok, "a cycle without converter terminates as not found")

		dac, ok := codec.ResolveDAC(0x06)
		assert.True(t, ok)
		assert.Equal(t, hda.Nid(0x06), dac)
	})

	t.Run("CycleWithExit", func(t *testing.T) {
		codec, _ := attachDesc(t, hda.SimCodec{
			VendorID: 0x10ec0888,
			Widgets: []hda.SimWidget{
				{Nid: 0x02, Type: "selector", Connections: []hda.Nid{0x03}},
				{Nid: 0x03, Type: "selector", Connections: []hda.Nid{0x02, 0x04}},
				{Nid: 0x04, Type: "dac"},
			},
		})

		dac, ok := codec.ResolveDAC(0x02)
		assert.True(t, ok)
		assert.Equal(t, hda.Nid(0x04), dac)
	})

	t.Run("DepthBound", func(t *testing.T) {
		chain := func(n int) *hda.Codec {
			var widgets []hda.SimWidget
			for i := 0; i < n; i++ {
				nid := hda.Nid(0x02 + i)
				widgets = append(widgets, hda.SimWidget{Nid: nid, Type: "selector", Connections: []hda.Nid{nid + 1}})
			}
			widgets = append(widgets, hda.SimWidget{Nid: hda.Nid(0x02 + n), Type: "dac"})

			codec, _ := attachDesc(t, hda.SimCodec{VendorID: 0x10ec0888, Widgets: widgets})

			return codec
		}

		dac, ok := chain(10).ResolveDAC(0x02)
		assert.True(t, ok)
		assert.Equal(t, hda.Nid(0x0c), dac)

		_, ok = chain(60).ResolveDAC(0x02)
		assert.False(t, ok, "paths deeper than the bound are not followed")
	})
}

func TestFormats(t *testing.T) {
	codec, _ := attach(t, "generic.yaml", nil)

	formats := codec.Formats()
	assert.Len(t, formats, 18, "3 sizes at 3 rates for playback and record")
	assert.Contains(t, formats, hda.StreamFormat{
		Playback: true,
		Format:   audio.Format{NumChannels: 2, SampleRate: 48000},
		BitDepth: 16,
	})
	assert.Contains(t, formats, hda.StreamFormat{
		Format:   audio.Format{NumChannels: 2, SampleRate: 96000},
		BitDepth: 24,
	})
	assert.Equal(t, "playback 2ch 16bit 44100Hz", formats[0].String())
}

func TestFormatsMultiChannel(t *testing.T) {
	codec, _ := attach(t, "stac9221.yaml", nil)

	require.Equal(t, hda.ConvGroup{0x02, 0x03, 0x04, 0x05}, codec.DACs.Current())

	channels := map[int]bool{}
	for _, f := range codec.Formats() {
		if f.Playback {
			channels[f.Format.NumChannels] = true
		}
	}

	assert.Equal(t, map[int]bool{2: true, 4: true, 6: true, 8: true}, channels,
		"every prefix of the group is a channel configuration")
}
