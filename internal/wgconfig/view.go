package wgconfig

import (
	"fmt"
	"strconv"
)

// view is a checked handle on a section owned by a Document.
type view struct {
	section *Section
}

func (v view) live() (*Section, error) {
	if v.section == nil || v.section.detached {
		return nil, ErrStaleView
	}

	return v.section, nil
}

// Section exposes the underlying section for generic key access.
func (v view) Section() (*Section, error) {
	return v.live()
}

func (v view) JSON() (SectionJSON, error) {
	section, err := v.live()
	if err != nil {
		return SectionJSON{}, err
	}

	return section.JSON(), nil
}

func (v view) value(key string) (string, error) {
	section, err := v.live()
	if err != nil {
		return "", err
	}

	entry, ok := section.GetOne(key)
	if !ok {
		return "", notFound(key)
	}

	return entry.value, nil
}

func (v view) list(key string) ([]string, error) {
	value, err := v.value(key)
	if err != nil {
		return nil, err
	}

	return splitList(value), nil
}

func (v view) integer(key string) (int, error) {
	value, err := v.value(key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q", ErrInvalidValue, key, value)
	}

	return n, nil
}

func (v view) all(key string) ([]string, error) {
	section, err := v.live()
	if err != nil {
		return nil, err
	}

	return section.Values(key), nil
}

func (v view) metadata(key string) (string, error) {
	section, err := v.live()
	if err != nil {
		return "", err
	}

	entry, ok := section.GetOneMetadata(key)
	if !ok {
		return "", notFound(key)
	}

	return entry.value, nil
}

func (v view) set(key string, values ...string) error {
	section, err := v.live()
	if err != nil {
		return err
	}

	return section.Set(key, values...)
}

func (v view) setMetadata(key string, values ...string) error {
	section, err := v.live()
	if err != nil {
		return err
	}

	return section.SetMetadata(key, values...)
}
