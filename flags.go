package irp

import (
	"fmt"
	"strconv"
	"strings"
)

// ArrayStringFlags collects repeated string flags.
type ArrayStringFlags []string

func (f *ArrayStringFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *ArrayStringFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

// ArrayIntFlags collects repeated integer flags.
type ArrayIntFlags []int

func (f *ArrayIntFlags) String() string {
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

func (f *ArrayIntFlags) Set(value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*f = append(*f, v)
	return nil
}
