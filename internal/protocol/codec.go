package protocol

import (
	"bytes"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

var (
	ErrEmptyFrame    = eris.New("empty frame")
	ErrFrameTooLarge = eris.New("frame exceeds size limit")
)

type envelope struct {
	Action string `json:"action"`
}

// Decode parses one frame into its concrete inbound type. Frames with an
// unrecognised or missing tag decode to *Unknown.
func Decode(frame []byte) (Inbound, error) {
	frame = bytes.TrimSpace(frame)
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, eris.Wrap(err, "failed to decode envelope")
	}

	newMsg, ok := inboundTypes[env.Action]
	if !ok {
		return &Unknown{Name: env.Action}, nil
	}
	msg := newMsg()
	if err := json.Unmarshal(frame, msg); err != nil {
		return nil, eris.Wrapf(err, "failed to decode %s", env.Action)
	}
	return msg, nil
}

// Encode serialises msg as one JSON object with its action tag first,
// terminated by a newline.
func Encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode %s", msg.Action())
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, eris.Errorf("action %s did not encode to an object", msg.Action())
	}

	tag, _ := json.Marshal(msg.Action())
	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 12)
	buf.WriteString(`{"action":`)
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FlexString accepts a JSON string, number or boolean and keeps its text.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'), bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*f = FlexString(b)
		return nil
	}
	return eris.Errorf("cannot read %s as a string", b)
}

func (f FlexString) String() string { return string(f) }

// FlexInt accepts a JSON number or numeric string. Fractions are truncated.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return eris.Errorf("cannot read %s as an integer", b)
	}
	*f = FlexInt(int(v))
	return nil
}

func (f FlexInt) Int() int { return int(f) }
