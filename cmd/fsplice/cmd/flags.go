package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/ungerik/go-splice"
)

var (
	_ pflag.Value = new(byteSizeValue)
	_ pflag.Value = new(separatorValue)
)

// byteSizeValue is a pflag.Value for sizes like "64KiB" or "1MB"
type byteSizeValue int

func (v *byteSizeValue) String() string {
	if *v == 0 {
		return ""
	}
	return humanize.IBytes(uint64(*v))
}

func (v *byteSizeValue) Set(s string) error {
	size, err := humanize.ParseBytes(s)
	if err != nil {
		return err
	}
	if size == 0 || size > 1<<30 {
		return fmt.Errorf("size %s out of range", s)
	}
	*v = byteSizeValue(size)
	return nil
}

func (*byteSizeValue) Type() string {
	return "size"
}

// separatorValue is a pflag.Value for LF, CR, CRLF or their escaped forms
type separatorValue splice.LineSeparator

func (v *separatorValue) String() string {
	if splice.LineSeparator(*v) == splice.LineSeparatorNone {
		return ""
	}
	return splice.LineSeparator(*v).String()
}

func (v *separatorValue) Set(s string) error {
	sep, err := splice.ParseLineSeparator(s)
	if err != nil {
		return err
	}
	*v = separatorValue(sep)
	return nil
}

func (*separatorValue) Type() string {
	return "separator"
}
