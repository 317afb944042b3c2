package detection

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const defaultMIMEType = "image/jpeg"

var ErrEmptyImage = errors.New("decoded image is empty")

// DecodeError reports an imageBase64 payload that is not valid base64.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid base64 image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// transientImage is the decoded upload for exactly one request. It lives in
// a uniquely named file that Close removes.
type transientImage struct {
	file     *os.File
	mimeType string
	size     int64
}

// newTransientImage streams the base64 payload into a fresh file under dir
// (the OS temp dir when empty) and leaves the file positioned at its start.
// A "data:<mime>;base64," prefix is accepted.
func newTransientImage(dir, payload string) (*transientImage, error) {
	payload, hint := splitDataURL(strings.TrimSpace(payload))

	f, err := os.CreateTemp(dir, "chefmate-detect-*")
	if err != nil {
		return nil, fmt.Errorf("create transient image: %w", err)
	}
	img := &transientImage{file: f}

	n, err := io.Copy(f, base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload)))
	if err != nil {
		img.Close()
		var corrupt base64.CorruptInputError
		if errors.As(err, &corrupt) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &DecodeError{Err: err}
		}
		return nil, fmt.Errorf("write transient image: %w", err)
	}
	if n == 0 {
		img.Close()
		return nil, &DecodeError{Err: ErrEmptyImage}
	}
	img.size = n

	head := make([]byte, 512)
	hn, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		img.Close()
		return nil, fmt.Errorf("read transient image: %w", err)
	}
	img.mimeType = pickMIMEType(hint, head[:hn])

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		img.Close()
		return nil, fmt.Errorf("rewind transient image: %w", err)
	}

	return img, nil
}

func (t *transientImage) Read(p []byte) (int, error) {
	return t.file.Read(p)
}

func (t *transientImage) Path() string {
	return t.file.Name()
}

// Close closes and removes the file. It is safe to call more than once.
func (t *transientImage) Close() error {
	closeErr := t.file.Close()
	if errors.Is(closeErr, os.ErrClosed) {
		closeErr = nil
	}
	removeErr := os.Remove(t.file.Name())
	if errors.Is(removeErr, os.ErrNotExist) {
		removeErr = nil
	}
	return errors.Join(closeErr, removeErr)
}

// splitDataURL strips a data URL header and returns the payload and the
// declared MIME type, if any.
func splitDataURL(s string) (payload, mimeType string) {
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return s, ""
	}
	meta := s[len("data:"):idx]
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		meta = meta[:semi]
	}
	return s[idx+1:], meta
}

// pickMIMEType prefers what the bytes say, then the data URL, then JPEG.
func pickMIMEType(hint string, head []byte) string {
	if sniffed := http.DetectContentType(head); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if strings.HasPrefix(hint, "image/") {
		return hint
	}
	return defaultMIMEType
}
