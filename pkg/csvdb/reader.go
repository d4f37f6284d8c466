package csvdb

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type Reader struct {
	fr       *os.File
	zr       *gzip.Reader
	reader   *csv.Reader
	values   []string
	err      error
	filename string
	rowNum   int
}

func newReader(filename string) (*Reader, error) {
	c := new(Reader)
	c.filename = filename
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Reader) open() error {
	var zr *gzip.Reader
	var r *csv.Reader

	fr, err := os.Open(c.filename)
	if err != nil {
		return errors.WithStack(err)
	}

	if isGzipPath(c.filename) {
		zr, err = gzip.NewReader(fr)
		if err != nil {
			fr.Close()
			return errors.WithStack(err)
		}
		r = csv.NewReader(zr)
	} else {
		r = csv.NewReader(fr)
	}
	// row width is checked against the header in ReadTable
	r.FieldsPerRecord = -1

	c.fr = fr
	c.zr = zr
	c.reader = r
	return nil
}

func (c *Reader) next() bool {
	values, err := c.reader.Read()
	if err != nil {
		if err != io.EOF {
			c.err = errors.WithStack(err)
		}
		return false
	}
	c.rowNum++
	c.values = values
	return true
}

func (c *Reader) close() {
	if c.zr != nil {
		c.zr.Close()
		c.zr = nil
	}
	if c.fr != nil {
		c.fr.Close()
		c.fr = nil
	}
}

// ReadTable parses the csv file at path into a Table. The first record is
// the header. Short records are padded with empty values, records wider
// than the header are an error. Gzip files are read transparently.
func ReadTable(path string) (*Table, error) {
	c, err := newReader(path)
	if err != nil {
		return nil, err
	}
	defer c.close()

	if !c.next() {
		if c.err != nil {
			return nil, errors.Wrapf(c.err, "reading header of %s", path)
		}
		return nil, errors.Errorf("%s has no header row", path)
	}
	header := make([]string, len(c.values))
	copy(header, c.values)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], cUTF8BOM)
	}

	t := NewTable(tableNameFromPath(path), uniqueColumns(header))
	for c.next() {
		if len(c.values) > len(header) {
			return nil, errors.Errorf("%s line %d: %d fields while header has %d",
				path, c.rowNum, len(c.values), len(header))
		}
		t.appendValues(c.values)
	}
	if c.err != nil {
		return nil, errors.Wrapf(c.err, "reading %s", path)
	}
	return t, nil
}
