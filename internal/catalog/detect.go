package catalog

import (
	"errors"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUndetectable is returned when neither the name nor the content identify
// a format.
var ErrUndetectable = errors.New("cannot detect format")

// Detect returns the format token for an uploaded file. The extension wins
// when the catalog knows it; otherwise the leading bytes are sniffed. An
// unknown extension is returned as-is when sniffing does not help, since the
// router accepts formats it has no edges for.
func (c *Catalog) Detect(name string, head []byte) (string, error) {
	ext := c.Resolve(filepath.Ext(name))
	if ext != "" && c.Known(ext) {
		return ext, nil
	}

	if len(head) > 0 {
		mt := mimetype.Detect(head)
		if sniffed := c.Resolve(mt.Extension()); sniffed != "" && c.Known(sniffed) {
			return sniffed, nil
		}
	}

	if ext != "" {
		return ext, nil
	}
	return "", ErrUndetectable
}

// MIME returns the sniffed MIME type of the leading bytes of a file.
func MIME(head []byte) string {
	return mimetype.Detect(head).String()
}
