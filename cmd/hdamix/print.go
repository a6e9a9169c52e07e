package main

import (
	"fmt"
	"strings"

	"github.com/gen2brain/hda"
)

// printControls lists the mixer table grouped by class.
func printControls(codec *hda.Codec, verbose bool) {
	for _, m := range codec.Ctls() {
		if m.Info.Type == hda.MixerClass {
			fmt.Printf("[%s]\n", m.Info.Label)

			continue
		}

		line := fmt.Sprintf("  %3d: %-16s %-5s", m.Info.Index, m.Info.Label, m.Info.Type)

		switch m.Info.Type {
		case hda.MixerEnum, hda.MixerSet:
			var members []string
			for _, e := range m.Info.Members {
				members = append(members, e.Label)
			}
			line += " {" + strings.Join(members, ",") + "}"
		case hda.MixerValue:
			line += fmt.Sprintf(" %dch delta %d", m.Info.Channels, m.Info.Delta)
			if m.Info.Units != "" {
				line += " " + m.Info.Units
			}
		}

		if verbose {
			value, err := codec.FormatValue(m.Info.Index)
			if err != nil {
				value = "<" + err.Error() + ">"
			}
			line += fmt.Sprintf(" = %s (%s %s)", value, m.Nid, m.Target)
		}

		fmt.Println(line)
	}
}

// printWidgets prints every enabled widget with its connections.
func printWidgets(codec *hda.Codec) {
	for _, w := range codec.Widgets() {
		if !w.Enabled() {
			continue
		}

		fmt.Println(w)

		var caps []string
		if w.Stereo() {
			caps = append(caps, "stereo")
		}
		if w.Digital() {
			caps = append(caps, "digital")
		}
		if w.HasInAmp() {
			caps = append(caps, fmt.Sprintf("in-amp %d steps", w.InAmp.NumSteps()+1))
		}
		if w.HasOutAmp() {
			caps = append(caps, fmt.Sprintf("out-amp %d steps", w.OutAmp.NumSteps()+1))
		}
		if w.Unsolicited() {
			caps = append(caps, "unsol")
		}
		if len(caps) > 0 {
			fmt.Printf("    caps: %s\n", strings.Join(caps, ", "))
		}

		if w.Type == hda.AC_WID_PIN {
			fmt.Printf("    pin: assoc %d seq %d\n", w.Pin.Config.Association(), w.Pin.Config.Sequence())
		}

		if len(w.Connections) == 0 {
			continue
		}

		var conns []string
		for i, nid := range w.Connections {
			name := nid.String()
			if src := codec.Widget(nid); src != nil {
				name = src.Name
			}
			if i == w.Selected {
				name += "*"
			}
			conns = append(conns, name)
		}
		fmt.Printf("    connections: %s\n", strings.Join(conns, " "))
	}
}

// printGroups prints the converter groups and the formats of the active ones.
func printGroups(codec *hda.Codec) {
	for _, set := range []struct {
		name string
		set  hda.ConvGroupSet
	}{
		{"playback", codec.DACs},
		{"record", codec.ADCs},
	} {
		fmt.Printf("%s groups:\n", set.name)
		for i, g := range set.set.Groups {
			mark := " "
			if i == set.set.Cur {
				mark = "*"
			}
			fmt.Printf("  %s%d: %s (%d channels)\n", mark, i, g, 2*len(g))
		}
	}

	fmt.Println("formats:")
	for _, f := range codec.Formats() {
		fmt.Printf("  %s\n", f)
	}
}
