package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Event names exchanged with the host application.
const (
	EventKeyUp              = "keyUp"
	EventWillAppear         = "willAppear"
	EventWillDisappear      = "willDisappear"
	EventDidReceiveSettings = "didReceiveSettings"

	EventSetTitle    = "setTitle"
	EventSetImage    = "setImage"
	EventGetSettings = "getSettings"
	EventLogMessage  = "logMessage"
)

// Event is the envelope of every message on the socket.
type Event struct {
	Event   string          `json:"event"`
	Action  string          `json:"action,omitempty"`
	Context string          `json:"context,omitempty"`
	Device  string          `json:"device,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the part of an incoming payload the plugin reads.
type Payload struct {
	Settings    Settings     `json:"settings"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Settings are the per-button values edited in the property inspector.
type Settings struct {
	Username        string  `json:"username"`
	Token           string  `json:"token"`
	Time            string  `json:"time"`
	Theme           string  `json:"theme"`
	ButtonNumber    FlexInt `json:"buttonNumber"`
	RefreshInterval FlexInt `json:"refreshInterval"`
}

// Configured reports whether both username and token are present.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.Username) != "" && strings.TrimSpace(s.Token) != ""
}

// FlexInt decodes from a JSON number, a numeric string, an empty string or
// null. The property inspector writes numbers as strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("decode number %q: %w", b, err)
	}
	*f = FlexInt(n)
	return nil
}

// ParsePayload decodes the payload of e. A missing payload yields zero values.
func (e Event) ParsePayload() (Payload, error) {
	var p Payload
	if len(e.Payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return Payload{}, fmt.Errorf("decode %s payload: %w", e.Event, err)
	}
	return p, nil
}
