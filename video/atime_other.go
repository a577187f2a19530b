//go:build !linux && !windows

package video

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where the access time is not read
func accessTime(fi fs.FileInfo) time.Time {
	return fi.ModTime()
}
