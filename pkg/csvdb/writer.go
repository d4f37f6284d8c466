package csvdb

import (
	"compress/gzip"
	"encoding/csv"
	"os"

	"github.com/pkg/errors"
)

type Writer struct {
	fw     *os.File
	zw     *gzip.Writer
	writer *csv.Writer
	path   string
}

// newWriter truncates any existing file at path.
func newWriter(path string) (*Writer, error) {
	var zw *gzip.Writer
	var writer *csv.Writer

	fw, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if isGzipPath(path) {
		zw = gzip.NewWriter(fw)
		writer = csv.NewWriter(zw)
	} else {
		writer = csv.NewWriter(fw)
	}

	c := new(Writer)
	c.path = path
	c.writer = writer
	c.fw = fw
	c.zw = zw

	return c, nil
}

func (c *Writer) write(record []string) error {
	return c.writer.Write(record)
}

func (c *Writer) flush() error {
	c.writer.Flush()
	return errors.Wrapf(c.writer.Error(), "writing %s", c.path)
}

func (c *Writer) close() error {
	if c.zw != nil {
		if err := c.zw.Close(); err != nil {
			c.fw.Close()
			return errors.WithStack(err)
		}
	}
	if c.fw != nil {
		return errors.WithStack(c.fw.Close())
	}
	return nil
}
