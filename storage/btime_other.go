//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package storage

import (
	"io/fs"
	"time"
)

func birthTime(_ string, info fs.FileInfo) time.Time {
	return info.ModTime()
}
