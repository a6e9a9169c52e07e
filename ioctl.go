package hda

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl performs a generic ioctl syscall.
func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}

	return nil
}

const (
	iocNrbits    = 8
	iocTypebits  = 8
	iocSizebits  = 14
	iocNrshift   = 0
	iocTypeshift = iocNrshift + iocNrbits
	iocSizeshift = iocTypeshift + iocTypebits
	iocDirshift  = iocSizeshift + iocSizebits
	iocWrite     = 1
	iocRead      = 2
)

// ior builds a read-only ioctl request code.
func ior(typ, nr, size uintptr) uintptr {
	return (iocRead << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

// iowr builds a read-write ioctl request code.
func iowr(typ, nr, size uintptr) uintptr {
	return ((iocRead | iocWrite) << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

// hdaVerbIoctl mirrors struct hda_verb_ioctl.
type hdaVerbIoctl struct {
	verb uint32
	res  uint32
}

// HDA_HWDEP_VERSION is the interface version the hwdep driver reports.
const HDA_HWDEP_VERSION = 1 << 16

var (
	// HDA hwdep IOCTLs
	HDA_IOCTL_PVERSION   uintptr
	HDA_IOCTL_VERB_WRITE uintptr
	HDA_IOCTL_GET_WCAP   uintptr
)

func init() {
	// 'H' for HDA
	HDA_IOCTL_PVERSION = ior('H', 0x10, unsafe.Sizeof(int32(0)))
	HDA_IOCTL_VERB_WRITE = iowr('H', 0x11, unsafe.Sizeof(hdaVerbIoctl{}))
	HDA_IOCTL_GET_WCAP = iowr('H', 0x12, unsafe.Sizeof(hdaVerbIoctl{}))
}
