package protocol

// ResponseBody is implemented by every encodable response payload
// (ApiVersionsResponse, FetchResponse, DescribeTopicPartitionsResponse).
type ResponseBody interface {
	encode(pe packetEncoder) error
}

// EncodeResponse frames body behind the 4-byte big-endian length prefix and
// correlation id every Kafka response carries, per SPEC_FULL.md §4.8: the
// length always includes the 4 correlation-id bytes.
func EncodeResponse(correlationID int32, body ResponseBody) ([]byte, error) {
	pe := newRealEncoder()
	pe.putInt32(correlationID)
	if err := body.encode(pe); err != nil {
		return nil, err
	}

	payload := pe.bytes()
	framed := newRealEncoder()
	framed.putInt32(int32(len(payload)))
	if err := framed.putRawBytes(payload); err != nil {
		return nil, err
	}
	return framed.bytes(), nil
}
