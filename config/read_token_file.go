package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const MaxTokenFileBytes int64 = 10 * 1024

var (
	ErrTokenFileEmpty     = errors.New("file is empty")
	ErrTokenFileTooLarge  = fmt.Errorf("file exceeds %d bytes", MaxTokenFileBytes)
	ErrTokenFileMultiLine = errors.New("file holds more than one line")
)

// ReadTokenFile returns the token stored at path with surrounding
// whitespace removed. Errors name the path; a missing file still satisfies
// errors.Is(err, os.ErrNotExist).
func ReadTokenFile(path string) (string, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return "", tokenFileError(path, err)
	}
	if !info.Mode().IsRegular() {
		return "", tokenFileError(path, errors.New("not a regular file"))
	}
	if info.Size() > MaxTokenFileBytes {
		return "", tokenFileError(path, ErrTokenFileTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", tokenFileError(path, err)
	}
	defer f.Close()

	token, err := readToken(f)
	if err != nil {
		return "", tokenFileError(path, err)
	}
	return token, nil
}

// readToken reads at most MaxTokenFileBytes, the file may have grown since
// it was inspected. The token ends up in a request header, so it must be a
// single line.
func readToken(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxTokenFileBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(b)) > MaxTokenFileBytes {
		return "", ErrTokenFileTooLarge
	}

	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrTokenFileEmpty
	}
	if strings.ContainsAny(token, "\r\n") {
		return "", ErrTokenFileMultiLine
	}
	return token, nil
}

func tokenFileError(path string, err error) error {
	return fmt.Errorf("token file %s: %w", path, err)
}
