package caserecord

import (
	"encoding/json"
	"fmt"
)

// EventText is a recursively defined value for hearing/event content: either
// a leaf string or a sequence of EventText values. The source layout nests
// event cells arbitrarily deep, so motion detection must recurse rather than
// assume a flat list.
type EventText struct {
	str *string
	seq []EventText
}

// Text returns a leaf EventText.
func Text(s string) EventText {
	return EventText{str: &s}
}

// Seq returns a sequence EventText.
func Seq(items ...EventText) EventText {
	if items == nil {
		items = []EventText{}
	}
	return EventText{seq: items}
}

// IsLeaf reports whether e is a leaf string.
func (e EventText) IsLeaf() bool {
	return e.str != nil
}

// Leaf returns the leaf string; empty for sequences.
func (e EventText) Leaf() string {
	if e.str == nil {
		return ""
	}
	return *e.str
}

// Items returns the sequence elements; nil for leaves.
func (e EventText) Items() []EventText {
	return e.seq
}

// MarshalJSON encodes a leaf as a JSON string and a sequence as a JSON array.
func (e EventText) MarshalJSON() ([]byte, error) {
	if e.str != nil {
		return json.Marshal(*e.str)
	}
	return json.Marshal(e.seq)
}

// UnmarshalJSON accepts a JSON string or a (possibly nested) JSON array of
// strings.
func (e *EventText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.str = &s
		e.seq = nil
		return nil
	}

	var items []EventText
	if err := json.Unmarshal(data, &items); err == nil {
		if items == nil {
			items = []EventText{}
		}
		e.str = nil
		e.seq = items
		return nil
	}

	return fmt.Errorf("event text must be a string or an array")
}

// EventRowsText converts extracted event rows into an EventText sequence, one
// inner sequence per row.
func EventRowsText(rows [][]string) EventText {
	out := make([]EventText, 0, len(rows))
	for _, row := range rows {
		cells := make([]EventText, 0, len(row))
		for _, cell := range row {
			cells = append(cells, Text(cell))
		}
		out = append(out, Seq(cells...))
	}
	return Seq(out...)
}
