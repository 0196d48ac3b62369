package sip

// DialogState represents the lifecycle state of a dialog.
type DialogState int32

const (
	// DialogStateEstablished is entered once dialog received 200 response
	DialogStateEstablished DialogState = iota
	// DialogStateConfirmed is entered once dialog received ACK
	DialogStateConfirmed
	// DialogStateEnded is entered once dialog received BYE
	DialogStateEnded
)
