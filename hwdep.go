package hda

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unsafe"
)

// Hwdep is a Transport backed by the Linux HDA hwdep device (/dev/snd/hwCxDy).
// The device is only created by kernels built with CONFIG_SND_HDA_HWDEP.
type Hwdep struct {
	mu      sync.Mutex
	file    *os.File
	card    uint
	device  uint
	version int32
}

// OpenHwdepByName opens a hwdep device by its name, in the format "hw:C,D".
func OpenHwdepByName(name string) (*Hwdep, error) {
	if !strings.HasPrefix(name, "hw:") {
		return nil, fmt.Errorf("invalid hwdep name format: missing 'hw:' prefix")
	}

	parts := strings.Split(strings.TrimPrefix(name, "hw:"), ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid hwdep name format: expected 'hw:card,device'")
	}

	card, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid card number '%s': %w", parts[0], err)
	}

	device, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid device number '%s': %w", parts[1], err)
	}

	return OpenHwdep(uint(card), uint(device))
}

// OpenHwdep opens the hwdep device of codec address device on a card.
func OpenHwdep(card, device uint) (*Hwdep, error) {
	path := fmt.Sprintf("/dev/snd/hwC%dD%d", card, device)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open hwdep device %s: %w", path, err)
	}

	h := &Hwdep{file: file, card: card, device: device}

	if err := ioctl(file.Fd(), HDA_IOCTL_PVERSION, uintptr(unsafe.Pointer(&h.version))); err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("ioctl PVERSION failed: %w", err)
	}

	if h.version < HDA_HWDEP_VERSION {
		_ = file.Close()

		return nil, fmt.Errorf("hwdep version 0x%x of %s is not supported", h.version, path)
	}

	return h, nil
}

// Command implements Transport by issuing HDA_IOCTL_VERB_WRITE.
func (h *Hwdep) Command(nid Nid, verb uint32, payload uint32) (uint32, error) {
	if h == nil || h.file == nil {
		return 0, fmt.Errorf("hwdep handle is not valid")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	v := hdaVerbIoctl{verb: uint32(nid)<<24 | verb<<8 | payload}
	if err := ioctl(h.file.Fd(), HDA_IOCTL_VERB_WRITE, uintptr(unsafe.Pointer(&v))); err != nil {
		return 0, fmt.Errorf("ioctl VERB_WRITE failed: %w", err)
	}

	return v.res, nil
}

// WidgetCaps returns the widget capabilities cached by the kernel driver without
// issuing a verb.
func (h *Hwdep) WidgetCaps(nid Nid) (uint32, error) {
	if h == nil || h.file == nil {
		return 0, fmt.Errorf("hwdep handle is not valid")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	v := hdaVerbIoctl{verb: uint32(nid) << 24}
	if err := ioctl(h.file.Fd(), HDA_IOCTL_GET_WCAP, uintptr(unsafe.Pointer(&v))); err != nil {
		return 0, fmt.Errorf("ioctl GET_WCAP failed: %w", err)
	}

	return v.res, nil
}

// Version returns the interface version reported by the driver.
func (h *Hwdep) Version() int32 {
	return h.version
}

// String returns the device name in the "hw:C,D" form.
func (h *Hwdep) String() string {
	return fmt.Sprintf("hw:%d,%d", h.card, h.device)
}

// Close closes the hwdep device.
func (h *Hwdep) Close() error {
	if h == nil || h.file == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.file.Close()
	h.file = nil

	return err
}
