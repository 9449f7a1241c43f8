package document

import (
	"fmt"
	"io"
	"os"
)

// Encode writes d to w in format f.
func Encode(w io.Writer, d *Document, f Format) error {
	switch f {
	case FormatJSON:
		return encodeJSON(w, d)
	case FormatSexpr:
		return encodeSexpr(w, d)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// Decode reads a document in format f and validates it.
func Decode(r io.Reader, f Format) (*Document, error) {
	var (
		d   *Document
		err error
	)
	switch f {
	case FormatJSON:
		d, err = decodeJSON(r)
	case FormatSexpr:
		d, err = decodeSexpr(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads the document at path, choosing the format by extension.
func Load(path string) (*Document, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	defer file.Close()

	return Decode(file, f)
}

// Save writes d to path, choosing the format by extension.
func Save(path string, d *Document) error {
	f, err := FormatForPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}
	if err := Encode(file, d, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	return nil
}
