package hda

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CodecInfo is one codec as reported by /proc/asound/card*/codec#*.
type CodecInfo struct {
	Card        int
	Address     int
	Name        string
	VendorID    uint32
	SubsystemID uint32
	RevisionID  uint32
}

// Family returns the override family selected for the codec.
func (i CodecInfo) Family() Family {
	return CodecFamily(i.VendorID)
}

// Device returns the hwdep device name of the codec, e.g. "hw:0,0".
func (i CodecInfo) Device() string {
	return fmt.Sprintf("hw:%d,%d", i.Card, i.Address)
}

// String returns a human-readable representation of the CodecInfo.
func (i CodecInfo) String() string {
	return fmt.Sprintf("Card %d codec %d: %s [%08x subsystem %08x rev %06x] (%s)",
		i.Card, i.Address, i.Name, i.VendorID, i.SubsystemID, i.RevisionID, i.Family())
}

var codecFileRegex = regexp.MustCompile(`card(\d+)/codec#(\d+)$`)

// EnumerateCodecs scans /proc/asound to find all HDA codecs.
func EnumerateCodecs() ([]CodecInfo, error) {
	return enumerateCodecs("/proc/asound")
}

func enumerateCodecs(root string) ([]CodecInfo, error) {
	paths, err := filepath.Glob(filepath.Join(root, "card*", "codec#*"))
	if err != nil {
		return nil, fmt.Errorf("could not list codecs in %s: %w", root, err)
	}

	var result []CodecInfo

	for _, path := range paths {
		matches := codecFileRegex.FindStringSubmatch(filepath.ToSlash(path))
		if len(matches) != 3 {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}

		info, err := ParseCodecInfo(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", path, err)
		}

		info.Card, _ = strconv.Atoi(matches[1])
		if info.Address < 0 {
			info.Address, _ = strconv.Atoi(matches[2])
		}

		result = append(result, info)
	}

	sort.Slice(result, func(a, b int) bool {
		if result[a].Card != result[b].Card {
			return result[a].Card < result[b].Card
		}

		return result[a].Address < result[b].Address
	})

	return result, nil
}

// ParseCodecInfo reads the header fields of a codec proc file.
// Only the lines before the first node description are parsed.
func ParseCodecInfo(r io.Reader) (CodecInfo, error) {
	info := CodecInfo{Address: -1}
	found := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Node ") {
			break
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		var err error
		switch strings.TrimSpace(key) {
		case "Codec":
			info.Name = value
		case "Address":
			info.Address, err = strconv.Atoi(value)
		case "Vendor Id":
			info.VendorID, err = parseHex(value)
			found = err == nil
		case "Subsystem Id":
			info.SubsystemID, err = parseHex(value)
		case "Revision Id":
			info.RevisionID, err = parseHex(value)
		}

		if err != nil {
			return CodecInfo{}, fmt.Errorf("invalid %s %q: %w", strings.TrimSpace(key), value, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return CodecInfo{}, err
	}

	if !found {
		return CodecInfo{}, fmt.Errorf("no vendor id: %w", ErrNotFound)
	}

	if info.Name == "" {
		info.Name = CodecName(info.VendorID)
	}

	return info, nil
}

func parseHex(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)

	return uint32(v), err
}
