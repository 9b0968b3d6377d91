package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadFeedback is returned when a T:105 response lacks joint or
// coordinate fields.
var ErrBadFeedback = errors.New("feedback response missing required fields")

// Feedback is the arm's reported position, decoded from a T:105 response.
type Feedback struct {
	Pose      Pose
	Cartesian Cartesian
}

type feedbackResponse struct {
	Base     *float64 `json:"b"`
	Shoulder *float64 `json:"s"`
	Elbow    *float64 `json:"e"`
	Wrist    *float64 `json:"t"`
	Roll     *float64 `json:"r"`
	Hand     *float64 `json:"g"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Z        *float64 `json:"z"`
	Tilt     *float64 `json:"tit"`
}

// ParseFeedback decodes a T:105 response body.
func ParseFeedback(body string) (Feedback, error) {
	var raw feedbackResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &raw); err != nil {
		return Feedback{}, fmt.Errorf("parse feedback JSON: %w", err)
	}

	fields := []*float64{
		raw.Base, raw.Shoulder, raw.Elbow, raw.Wrist, raw.Roll, raw.Hand,
		raw.X, raw.Y, raw.Z, raw.Tilt,
	}
	for _, f := range fields {
		if f == nil {
			return Feedback{}, ErrBadFeedback
		}
	}

	return Feedback{
		Pose: Pose{
			Base:     *raw.Base,
			Shoulder: *raw.Shoulder,
			Elbow:    *raw.Elbow,
			Wrist:    *raw.Wrist,
			Roll:     *raw.Roll,
			Hand:     *raw.Hand,
			Speed:    DefaultSpeed,
			Acc:      DefaultAcc,
		},
		Cartesian: Cartesian{
			X:    *raw.X,
			Y:    *raw.Y,
			Z:    *raw.Z,
			Tilt: *raw.Tilt,
			Roll: *raw.Roll,
			Hand: *raw.Hand,
		},
	}, nil
}

// MoveLine formats the pose as a program file move with the given delay in
// seconds, ready to paste into a step.
func (f Feedback) MoveLine(delay float64) string {
	v := f.Pose.Values()
	return fmt.Sprintf("- {joints: [%v, %v, %v, %v, %v, %v], delay: %v}",
		v[0], v[1], v[2], v[3], v[4], v[5], delay)
}
