package hda

// ScalePolicy selects how control levels map to amplifier steps.
type ScalePolicy int

const (
	// ScaleDefault uses the policy the package was built with.
	ScaleDefault ScalePolicy = iota
	// ScaleRaw exposes the device steps unchanged.
	ScaleRaw
	// ScaleMax255 stretches every range to 0..255.
	ScaleMax255
)

// String returns a human-readable representation of the ScalePolicy.
func (p ScalePolicy) String() string {
	switch p {
	case ScaleRaw:
		return "raw"
	case ScaleMax255:
		return "max255"
	default:
		return "default"
	}
}

const audioMaxGain = 255

// mixerDelta is the smallest distance between two normalized levels for a range of n steps.
func mixerDelta(n uint32) int {
	if n == 0 {
		return audioMaxGain
	}

	if d := audioMaxGain / n; d > 0 {
		return int(d)
	}

	return 1
}

// deviceMax returns the highest raw step of the register a target addresses.
func (c *Codec) deviceMax(nid Nid, target Target) uint32 {
	w := c.Widget(nid)
	if w == nil {
		return 0
	}

	switch target.Kind {
	case TargetOutAmp:
		return w.OutAmp.NumSteps()
	case TargetInAmp:
		return w.InAmp.NumSteps()
	case TargetVolume:
		return w.Knob.NumSteps()
	default:
		return 0
	}
}

// mixerMax returns the highest normalized level of a target.
func (c *Codec) mixerMax(nid Nid, target Target) uint32 {
	if c.scale == ScaleMax255 {
		return audioMaxGain
	}

	return c.deviceMax(nid, target)
}

// validateValue reports whether a normalized level is in range.
func (c *Codec) validateValue(nid Nid, target Target, level uint8) bool {
	if c.scale == ScaleMax255 {
		return uint32(level) <= audioMaxGain
	}

	return uint32(level) <= c.deviceMax(nid, target)
}

// toDevice converts a normalized level to raw steps, rounding to the nearest step.
func (c *Codec) toDevice(nid Nid, target Target, level uint8) uint32 {
	if c.scale != ScaleMax255 {
		return uint32(level)
	}

	dmax := c.deviceMax(nid, target)
	if dmax == 0 {
		return 0
	}

	steps := (uint32(level)*dmax + audioMaxGain/2) / audioMaxGain
	if steps > dmax {
		steps = dmax
	}

	return steps
}

// fromDevice converts raw steps to a normalized level. The top step maps to 255.
func (c *Codec) fromDevice(nid Nid, target Target, steps uint32) uint8 {
	if c.scale != ScaleMax255 {
		return uint8(steps)
	}

	dmax := c.deviceMax(nid, target)
	if dmax == 0 {
		return 0
	}

	if steps > dmax {
		steps = dmax
	}

	return uint8(steps * audioMaxGain / dmax)
}

// midpoint returns the normalized level of the middle step of a target's range.
func (c *Codec) midpoint(nid Nid, target Target) uint8 {
	return c.fromDevice(nid, target, (c.deviceMax(nid, target)+1)/2)
}
