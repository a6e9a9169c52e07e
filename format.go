package hda

import (
	"fmt"

	"github.com/go-audio/audio"
)

// StreamFormat is one stream configuration the active converter groups support.
type StreamFormat struct {
	Playback bool
	Format   audio.Format
	BitDepth int
}

// String returns a human-readable representation of the StreamFormat.
func (f StreamFormat) String() string {
	dir := "record"
	if f.Playback {
		dir = "playback"
	}

	return fmt.Sprintf("%s %dch %dbit %dHz", dir, f.Format.NumChannels, f.BitDepth, f.Format.SampleRate)
}

var pcmBits = []struct {
	mask  uint32
	depth int
}{
	{AC_SUPPCM_BITS_8, 8},
	{AC_SUPPCM_BITS_16, 16},
	{AC_SUPPCM_BITS_20, 20},
	{AC_SUPPCM_BITS_24, 24},
	{AC_SUPPCM_BITS_32, 32},
}

var pcmRates = []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 88200, 96000, 176400, 192000, 384000}

// Formats returns the stream formats of the active converter groups.
func (c *Codec) Formats() []StreamFormat {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]StreamFormat(nil), c.formats...)
}

// constructFormat selects the active groups and rebuilds the supported formats.
func (c *Codec) constructFormat(dac, adc int) error {
	var formats []StreamFormat

	if len(c.DACs.Groups) > 0 {
		fs, err := c.groupFormats(c.DACs.Groups[dac], true)
		if err != nil {
			return err
		}
		formats = append(formats, fs...)
	}

	if len(c.ADCs.Groups) > 0 {
		fs, err := c.groupFormats(c.ADCs.Groups[adc], false)
		if err != nil {
			return err
		}
		formats = append(formats, fs...)
	}

	c.DACs.Cur = dac
	c.ADCs.Cur = adc
	c.formats = formats

	return nil
}

// groupFormats lists the formats of every prefix of a group. A prefix carries the
// channels of its converters and the sample sizes and rates all of them support.
func (c *Codec) groupFormats(g ConvGroup, playback bool) ([]StreamFormat, error) {
	var formats []StreamFormat

	channels := 0
	bitsRates := ^uint32(0)

	for i, nid := range g {
		w := c.Widget(nid)
		if w == nil {
			return nil, fmt.Errorf("converter %s: %w", nid, ErrNotFound)
		}

		channels += w.Channels()
		bitsRates &= w.BitsRates

		depths := 0
		for _, b := range pcmBits {
			if bitsRates&b.mask == 0 {
				continue
			}
			depths++

			for r, rate := range pcmRates {
				if bitsRates&(1<<uint(r)) == 0 {
					continue
				}

				formats = append(formats, StreamFormat{
					Playback: playback,
					Format:   audio.Format{NumChannels: channels, SampleRate: rate},
					BitDepth: b.depth,
				})
			}
		}

		if depths == 0 && i == 0 {
			return nil, fmt.Errorf("converter %s reports no sample sizes: %w", nid, ErrInvalid)
		}
	}

	return formats, nil
}
