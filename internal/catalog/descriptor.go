// Package catalog turns the remote tileset listing into the category/layer
// index that feeds the viewer's category and indicator selectors.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// LayerDescriptor names one overlay published by the tile service.
// An empty Category means the service did not categorise the layer.
type LayerDescriptor struct {
	ID          string `json:"id" yaml:"id" doc:"Tileset identifier" example:"svir-econ-all"`
	DisplayName string `json:"mapped_value" yaml:"mapped_value" doc:"Human readable indicator name" example:"Economic Vulnerability"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty" doc:"Indicator category" example:"Economy"`
}

// HasCategory reports whether the descriptor takes part in the index.
func (d LayerDescriptor) HasCategory() bool {
	return d.Category != ""
}

// ErrNotArray is returned when the descriptor payload is not a JSON array.
var ErrNotArray = errors.New("descriptor payload is not a JSON array")

// rawDescriptor mirrors the wire record. Pointers distinguish absent fields
// from empty ones; a non-string value fails json decoding outright.
type rawDescriptor struct {
	ID          *string `json:"id"`
	MappedValue *string `json:"mapped_value"`
	Category    *string `json:"category"`
}

// RecordError describes one rejected element of the descriptor payload.
type RecordError struct {
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("descriptor %d: %s", e.Index, e.Reason)
}

// DecodeDescriptors validates a tileset listing element by element.
// Valid records are returned in payload order; each rejected record is
// logged and reported as a *RecordError. Only a payload that is not an
// array at all yields a nil slice.
func DecodeDescriptors(data []byte, logger *slog.Logger) ([]LayerDescriptor, []error) {
	if logger == nil {
		logger = slog.Default()
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, []error{fmt.Errorf("%w: %v", ErrNotArray, err)}
	}
	if elems == nil {
		// null decodes without error
		return nil, []error{ErrNotArray}
	}

	descriptors := make([]LayerDescriptor, 0, len(elems))
	var errs []error
	for i, elem := range elems {
		d, reason := decodeOne(elem)
		if reason != "" {
			err := &RecordError{Index: i, Reason: reason}
			logger.Warn("rejected layer descriptor", "index", i, "reason", reason)
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, errs
}

func decodeOne(elem json.RawMessage) (LayerDescriptor, string) {
	var raw rawDescriptor
	if err := json.Unmarshal(elem, &raw); err != nil {
		return LayerDescriptor{}, err.Error()
	}
	if raw.ID == nil || *raw.ID == "" {
		return LayerDescriptor{}, "missing id"
	}
	if raw.MappedValue == nil || *raw.MappedValue == "" {
		return LayerDescriptor{}, "missing mapped_value"
	}

	d := LayerDescriptor{ID: *raw.ID, DisplayName: *raw.MappedValue}
	if raw.Category != nil {
		d.Category = *raw.Category
	}
	return d, ""
}
