package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

type Format string

const (
	FormatPlain  Format = "plain"
	FormatCustom Format = "custom"
	FormatMySQL  Format = "mysql"
)

var (
	ErrEmptyDump     = errors.New("dump file is empty")
	ErrUnknownFormat = errors.New("unrecognised dump format")
)

// Inspect reads the head of a finished dump and reports its format and
// size. An empty file is an error; an unrecognised one is reported with
// ErrUnknownFormat so callers can decide whether to keep it.
func Inspect(path string) (Format, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	if info.Size() == 0 {
		return "", 0, ErrEmptyDump
	}

	format, err := Detect(f)
	return format, info.Size(), err
}

func Detect(r io.Reader) (Format, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read dump head: %w", err)
	}
	return DetectHead(head[:n])
}

func DetectHead(head []byte) (Format, error) {
	switch {
	case len(head) == 0:
		return "", ErrEmptyDump
	case isCustom(head):
		return FormatCustom, nil
	case isPlain(head):
		return FormatPlain, nil
	case isMySQL(head):
		return FormatMySQL, nil
	}
	return "", ErrUnknownFormat
}

func isCustom(head []byte) bool {
	return bytes.HasPrefix(head, []byte("PGDMP"))
}

func isPlain(head []byte) bool {
	return bytes.Contains(head, []byte("PostgreSQL database dump"))
}

func isMySQL(head []byte) bool {
	trimmed := bytes.TrimSpace(head)
	return bytes.HasPrefix(trimmed, []byte("-- MySQL dump")) || bytes.HasPrefix(trimmed, []byte("-- MariaDB dump"))
}
