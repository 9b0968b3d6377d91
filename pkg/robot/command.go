package robot

import (
	"encoding/json"
	"fmt"
)

// Command type tags understood by the arm firmware.
const (
	TypeJoints    = 102
	TypeFeedback  = 105
	TypeCartesian = 1041
)

// Payload is the encoded JSON text of a single arm command.
type Payload string

// RawPayload wraps a literal command string.
func RawPayload(s string) Payload {
	return Payload(s)
}

// String returns the payload text.
func (p Payload) String() string {
	return string(p)
}

type jointsCommand struct {
	T        int     `json:"T"`
	Base     float64 `json:"base"`
	Shoulder float64 `json:"shoulder"`
	Elbow    float64 `json:"elbow"`
	Wrist    float64 `json:"wrist"`
	Roll     float64 `json:"roll"`
	Hand     float64 `json:"hand"`
	Speed    int     `json:"spd"`
	Acc      int     `json:"acc"`
}

type cartesianCommand struct {
	T    int     `json:"T"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Tilt float64 `json:"t"`
	Roll float64 `json:"r"`
	Hand float64 `json:"g"`
}

// JointsPayload encodes a T:102 joint-angle command for a pose.
func JointsPayload(p Pose) (Payload, error) {
	return encode(jointsCommand{
		T:        TypeJoints,
		Base:     p.Base,
		Shoulder: p.Shoulder,
		Elbow:    p.Elbow,
		Wrist:    p.Wrist,
		Roll:     p.Roll,
		Hand:     p.Hand,
		Speed:    p.Speed,
		Acc:      p.Acc,
	})
}

// CartesianPayload encodes a T:1041 straight-line cartesian command.
func CartesianPayload(c Cartesian) (Payload, error) {
	return encode(cartesianCommand{
		T:    TypeCartesian,
		X:    c.X,
		Y:    c.Y,
		Z:    c.Z,
		Tilt: c.Tilt,
		Roll: c.Roll,
		Hand: c.Hand,
	})
}

// FeedbackPayload encodes the T:105 request for the arm's current position.
func FeedbackPayload() Payload {
	return Payload(fmt.Sprintf(`{"T":%d}`, TypeFeedback))
}

func encode(v any) (Payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode command: %w", err)
	}
	return Payload(data), nil
}
