package hda

import (
	"fmt"
	"sync"
	"time"
)

// DefaultPollInterval is the pin sense polling period of a JackPoller.
const DefaultPollInterval = 500 * time.Millisecond

// JackPoller turns pin sense changes into unsolicited events.
// Userspace transports never see the codec's unsolicited responses, so the
// registered jacks are polled instead.
type JackPoller struct {
	codec    *Codec
	interval time.Duration
	state    map[Nid]bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewJackPoller creates a poller for the jacks registered on the codec.
// A zero interval selects DefaultPollInterval.
func (c *Codec) NewJackPoller(interval time.Duration) *JackPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &JackPoller{
		codec:    c,
		interval: interval,
		state:    make(map[Nid]bool),
		stopChan: make(chan struct{}),
	}
}

// Poll reads the presence of every registered jack once and delivers the tag of
// each jack that changed since the previous poll. The first poll only records state.
// The callback, if set, is called after the event was handled.
func (p *JackPoller) Poll(callback func(j Jack, present bool) error) error {
	if p.codec == nil {
		return fmt.Errorf("codec is nil")
	}

	for _, j := range p.codec.Jacks() {
		present, err := p.codec.PinPresent(j.Nid)
		if err != nil {
			return fmt.Errorf("failed to read pin sense of %s: %w", j.Nid, err)
		}

		last, seen := p.state[j.Nid]
		p.state[j.Nid] = present
		if !seen || last == present {
			continue
		}

		p.codec.log.Debug().Stringer("nid", j.Nid).Bool("present", present).Msg("jack changed")

		if err := p.codec.Unsolicited(j.Tag); err != nil {
			return err
		}

		if callback != nil {
			if err := callback(j, present); err != nil {
				return err
			}
		}
	}

	return nil
}

// Watch polls until Stop is called or the callback fails.
func (p *JackPoller) Watch(callback func(j Jack, present bool) error) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.Poll(callback); err != nil {
		return err
	}

	for {
		select {
		case <-p.stopChan:
			return nil
		case <-ticker.C:
			if err := p.Poll(callback); err != nil {
				return err
			}
		}
	}
}

// Stop ends a running Watch. It is safe to call more than once.
func (p *JackPoller) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}
