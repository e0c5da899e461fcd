package models

import "time"

// BackupFile is a database dump stored in the backup directory.
type BackupFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}
