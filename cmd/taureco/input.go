package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/taureco/pkg/taureco"
	"github.com/randalmurphal/taureco/pkg/taureco/config"
)

// eventFile is the on-disk layout of an input file.
type eventFile struct {
	Events []*taureco.Event `json:"events" yaml:"events"`
}

// loadEvents reads events from a YAML or JSON file. Events without an ID are
// named by index; events without a number get their 1-based position.
func loadEvents(path string) ([]*taureco.Event, error) {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return parseEvents(data, format)
}

func parseEvents(data []byte, format config.Format) ([]*taureco.Event, error) {
	var f eventFile
	switch format {
	case config.FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse events: %w", err)
		}
	case config.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse events: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported events format %q", format)
	}

	for i, ev := range f.Events {
		if ev == nil {
			return nil, fmt.Errorf("event %d is empty", i)
		}
		if ev.ID == "" {
			ev.ID = fmt.Sprintf("event-%d", i)
		}
		if ev.Number == 0 {
			ev.Number = uint64(i) + 1
		}
	}
	return f.Events, nil
}
