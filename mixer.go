package hda

import (
	"fmt"
	"strings"
)

// NumCtls returns the number of mixer controls.
func (c *Codec) NumCtls() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.mixers)
}

// QueryDevInfo returns the descriptor of the control at index.
func (c *Codec) QueryDevInfo(index int) (DevInfo, error) {
	if c == nil {
		return DevInfo{}, fmt.Errorf("codec is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.mixers) {
		return DevInfo{}, fmt.Errorf("control %d: %w", index, ErrNoDevice)
	}

	info := c.mixers[index].Info
	info.Members = append([]EnumMember(nil), info.Members...)

	return info, nil
}

// Ctl returns a copy of the control at index.
func (c *Codec) Ctl(index int) (MixerItem, error) {
	if c == nil {
		return MixerItem{}, fmt.Errorf("codec is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.mixers) {
		return MixerItem{}, fmt.Errorf("control %d: %w", index, ErrNoDevice)
	}

	return c.mixers[index], nil
}

// Ctls returns a copy of the mixer table.
func (c *Codec) Ctls() []MixerItem {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]MixerItem(nil), c.mixers...)
}

// CtlByName returns the first control with the given label.
func (c *Codec) CtlByName(label string) (MixerItem, error) {
	if c == nil {
		return MixerItem{}, fmt.Errorf("codec is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.mixers {
		if m.Info.Label == label {
			return m, nil
		}
	}

	return MixerItem{}, fmt.Errorf("control %q: %w", label, ErrNotFound)
}

// CtlByNameAndClass returns the control with the given label in the given class.
// Labels are only unique within a class.
func (c *Codec) CtlByNameAndClass(label string, class int) (MixerItem, error) {
	if c == nil {
		return MixerItem{}, fmt.Errorf("codec is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.mixers {
		if m.Info.Label == label && m.Info.Class == class && m.Info.Type != MixerClass {
			return m, nil
		}
	}

	return MixerItem{}, fmt.Errorf("control %s.%s: %w", className(class), label, ErrNotFound)
}

// GetPort reads the control mc.Dev into mc. mc.Type must match the control kind.
func (c *Codec) GetPort(mc *MixerCtrl) error {
	if c == nil {
		return fmt.Errorf("codec is nil")
	}

	if mc == nil {
		return fmt.Errorf("control is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.GetPort(c, mc)
}

// SetPort writes mc to the control mc.Dev. mc.Type must match the control kind.
func (c *Codec) SetPort(mc *MixerCtrl) error {
	if c == nil {
		return fmt.Errorf("codec is nil")
	}

	if mc == nil {
		return fmt.Errorf("control is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ops.SetPort(c, mc)
}

// lookupPort validates a port request against the mixer table.
// A nil item with a nil error means the request addressed a class and is a no-op.
func (c *Codec) lookupPort(mc *MixerCtrl) (*MixerItem, error) {
	if mc.Dev < 0 || mc.Dev >= len(c.mixers) {
		return nil, fmt.Errorf("control %d: %w", mc.Dev, ErrNoDevice)
	}

	m := &c.mixers[mc.Dev]
	if mc.Type != m.Info.Type {
		return nil, fmt.Errorf("control %d is %s, not %s: %w", mc.Dev, m.Info.Type, mc.Type, ErrInvalid)
	}

	if m.Info.Type == MixerClass {
		return nil, nil
	}

	// Only listed sources are physically present.
	if m.Target.Kind == TargetConnList && !m.Info.hasMember(mc.Ord) {
		return nil, fmt.Errorf("connection %d is not a source of %s: %w", mc.Ord, m.Info.Label, ErrInvalid)
	}

	return m, nil
}

// getPort is the generic GetPort.
func (c *Codec) getPort(mc *MixerCtrl) error {
	m, err := c.lookupPort(mc)
	if err != nil || m == nil {
		return err
	}

	return c.mixerGet(m.Nid, m.Target, mc)
}

// setPort is the generic SetPort.
func (c *Codec) setPort(mc *MixerCtrl) error {
	m, err := c.lookupPort(mc)
	if err != nil || m == nil {
		return err
	}

	return c.mixerSet(m.Nid, m.Target, mc)
}

// FormatValue renders the current value of a control, e.g. "on", "128,128" or "[v,pre]".
func (c *Codec) FormatValue(index int) (string, error) {
	info, err := c.QueryDevInfo(index)
	if err != nil {
		return "", err
	}

	mc := &MixerCtrl{Dev: index, Type: info.Type}
	if err := c.GetPort(mc); err != nil {
		return "", err
	}

	switch info.Type {
	case MixerEnum:
		for _, m := range info.Members {
			if m.Ord == mc.Ord {
				return m.Label, nil
			}
		}

		return fmt.Sprintf("%d", mc.Ord), nil
	case MixerSet:
		var set []string
		for _, m := range info.Members {
			if mc.Mask&uint32(m.Ord) != 0 {
				set = append(set, m.Label)
			}
		}

		return "[" + strings.Join(set, ",") + "]", nil
	case MixerValue:
		if mc.Channels == 2 {
			return fmt.Sprintf("%d,%d", mc.Level[0], mc.Level[1]), nil
		}

		return fmt.Sprintf("%d", mc.Level[0]), nil
	default:
		return "", nil
	}
}

// ParseValue builds a control value for the control at index from its textual form,
// the inverse of FormatValue.
func (c *Codec) ParseValue(index int, value string) (*MixerCtrl, error) {
	info, err := c.QueryDevInfo(index)
	if err != nil {
		return nil, err
	}

	mc := &MixerCtrl{Dev: index, Type: info.Type}

	switch info.Type {
	case MixerEnum:
		for _, m := range info.Members {
			if m.Label == value {
				mc.Ord = m.Ord

				return mc, nil
			}
		}

		if _, err := fmt.Sscanf(value, "%d", &mc.Ord); err != nil {
			return nil, fmt.Errorf("%q is not a member of %s: %w", value, info.Label, ErrInvalid)
		}

		return mc, nil
	case MixerSet:
		value = strings.Trim(value, "[]")
		for _, label := range strings.Split(value, ",") {
			if label == "" {
				continue
			}

			found := false
			for _, m := range info.Members {
				if m.Label == label {
					mc.Mask |= uint32(m.Ord)
					found = true
				}
			}

			if !found {
				return nil, fmt.Errorf("%q is not a member of %s: %w", label, info.Label, ErrInvalid)
			}
		}

		return mc, nil
	case MixerValue:
		parts := strings.Split(value, ",")
		if len(parts) > 2 {
			return nil, fmt.Errorf("too many levels in %q: %w", value, ErrInvalid)
		}

		mc.Channels = info.Channels
		for i := 0; i < info.Channels && i < 2; i++ {
			part := parts[0]
			if i < len(parts) {
				part = parts[i]
			}

			var level uint
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &level); err != nil || level > 255 {
				return nil, fmt.Errorf("invalid level %q: %w", part, ErrInvalid)
			}
			mc.Level[i] = uint8(level)
		}

		return mc, nil
	default:
		return nil, fmt.Errorf("%s is a class: %w", info.Label, ErrInvalid)
	}
}

func className(class int) string {
	if class < 0 || class >= len(classNames) {
		return fmt.Sprintf("class%d", class)
	}

	return classNames[class]
}
