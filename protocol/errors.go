package protocol

// KError is a Kafka protocol error code. It satisfies the error interface
// the way the teacher's KError does, so dispatcher code can return one
// directly without a separate wrapper type.
type KError int16

const (
	ErrNone                     KError = 0
	ErrUnknownTopicOrPartition  KError = 3
	ErrUnsupportedVersion       KError = 35
	ErrInvalidRequest           KError = 42
	ErrUnknownTopicID           KError = 100
)

var errNames = map[KError]string{
	ErrNone:                    "NONE",
	ErrUnknownTopicOrPartition: "UNKNOWN_TOPIC_OR_PARTITION",
	ErrUnsupportedVersion:      "UNSUPPORTED_VERSION",
	ErrInvalidRequest:          "INVALID_REQUEST",
	ErrUnknownTopicID:          "UNKNOWN_TOPIC_ID",
}

func (e KError) Error() string {
	if name, ok := errNames[e]; ok {
		return name
	}
	return "UNKNOWN_SERVER_ERROR"
}
