//go:build !hda_max255

package hda

// defaultScale is the policy used when Config.Scale is ScaleDefault.
const defaultScale = ScaleRaw
