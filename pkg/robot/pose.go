package robot

import (
	"fmt"
	"math"
)

// Default motion parameters used when a pose does not set its own.
const (
	DefaultSpeed = 0
	DefaultAcc   = 255
)

// Pose is a six-joint arm configuration in radians plus the speed and
// acceleration the arm should use to reach it.
type Pose struct {
	Base     float64
	Shoulder float64
	Elbow    float64
	Wrist    float64
	Roll     float64
	Hand     float64
	Speed    int
	Acc      int
}

// PoseFromJoints builds a pose from joint values in AllJoints order.
func PoseFromJoints(joints []float64, speed, acc int) (Pose, error) {
	if len(joints) != len(AllJoints()) {
		return Pose{}, fmt.Errorf("pose needs %d joint values, got %d", len(AllJoints()), len(joints))
	}
	for i, v := range joints {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Pose{}, fmt.Errorf("joint %s: value %v is not finite", AllJoints()[i], v)
		}
	}
	return Pose{
		Base:     joints[0],
		Shoulder: joints[1],
		Elbow:    joints[2],
		Wrist:    joints[3],
		Roll:     joints[4],
		Hand:     joints[5],
		Speed:    speed,
		Acc:      acc,
	}, nil
}

// Values returns the joint values in AllJoints order.
func (p Pose) Values() []float64 {
	return []float64{p.Base, p.Shoulder, p.Elbow, p.Wrist, p.Roll, p.Hand}
}

// Joints returns the joint values keyed by joint name.
func (p Pose) Joints() map[JointName]float64 {
	joints := make(map[JointName]float64, 6)
	for i, name := range AllJoints() {
		joints[name] = p.Values()[i]
	}
	return joints
}

// Cartesian is an end-effector target in millimetres with tilt, roll and
// gripper angles in radians.
type Cartesian struct {
	X    float64
	Y    float64
	Z    float64
	Tilt float64
	Roll float64
	Hand float64
}
