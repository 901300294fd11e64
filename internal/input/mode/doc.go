// Package mode defines the modal states of the editing engine and a small
// manager that records transitions and notifies observers.
//
// The set of modes is closed: Normal, Insert, Replace, the three Visual
// kinds, OperatorPending and CommandLine. Behaviour per mode lives in the
// resolver and the editor; this package only names the states.
package mode
