// Package robot provides poses, command payloads and transports for RoArm
// robot arms driven by JSON commands.
package robot

// JointName identifies a joint in the arm.
type JointName string

// Joint names for the RoArm arm, in command order.
const (
	Base     JointName = "base"
	Shoulder JointName = "shoulder"
	Elbow    JointName = "elbow"
	Wrist    JointName = "wrist"
	Roll     JointName = "roll"
	Hand     JointName = "hand"
)

// AllJoints returns all joint names in order (matching the T:102 fields).
func AllJoints() []JointName {
	return []JointName{
		Base,
		Shoulder,
		Elbow,
		Wrist,
		Roll,
		Hand,
	}
}
