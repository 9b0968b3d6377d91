// Package roarm runs step sequences on Waveshare RoArm robot arms.
//
// The arm is driven with small JSON commands, sent over Wi-Fi (HTTP) or a
// USB serial port. A sequence is a list of named steps: fixed command
// steps, operator pauses and operator selections that inject a branch step
// into the running sequence.
//
// # Installation
//
//	go install github.com/gwillem/roarm/cmd/roarm@latest
//
// # Usage
//
// Configure the connection once:
//
//	roarm setup
//
// Then run the default sequence, or a list of steps:
//
//	roarm run
//	roarm run Home LeftPickup SelectDropoff
//
// Record poses for a program file by moving the arm and watching its joints:
//
//	roarm joints
//
// # Packages
//
//   - cmd/roarm: CLI with run, steps, joints and setup commands
//   - pkg/robot: Poses, command payloads, transports and configuration
//   - pkg/sequence: Steps, dispatcher, registry and sequence runner
//   - pkg/program: YAML program files and the built-in program
//   - pkg/monitor: Joint position polling
//   - pkg/logging: Structured debug log
package roarm
