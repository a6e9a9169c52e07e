package hda

// EnumerateCodecsIn scans a procfs tree rooted somewhere other than /proc/asound.
var EnumerateCodecsIn = enumerateCodecs

// SetTarget writes mc to a widget target without going through the mixer table.
func (c *Codec) SetTarget(nid Nid, target Target, mc *MixerCtrl) error {
	return c.mixerSet(nid, target, mc)
}
