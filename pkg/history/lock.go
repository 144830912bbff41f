package history

import (
	"os"

	"golang.org/x/sys/unix"
)

func lockExclusive(f *os.File) (func(), error) {
	return flock(f, unix.LOCK_EX)
}

func lockShared(f *os.File) (func(), error) {
	return flock(f, unix.LOCK_SH)
}

// flock blocks until the advisory lock is granted. The returned func releases it.
func flock(f *os.File, how int) (func(), error) {
	fd := int(f.Fd())
	for {
		err := unix.Flock(fd, how)
		if err == nil {
			break
		}
		if err != unix.EINTR {
			return nil, err
		}
	}
	return func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
	}, nil
}
