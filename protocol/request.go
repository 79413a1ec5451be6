package protocol

// RequestBody is implemented by every decoded request payload
// (ApiVersionsRequest, FetchRequest, DescribeTopicPartitionsRequest). Each
// concrete type also satisfies an unexported marker method so the set is
// closed the way SPEC_FULL.md §9 calls for ("the closest idiomatic Go
// equivalent of a closed tagged union").
type RequestBody interface {
	requestBody()
}

// DecodeRequestBody decodes body according to header's api key and
// version. The caller (the dispatcher) has already confirmed
// header.IsSupportedVersion(), so the only possible key values here are
// the three this broker supports.
func DecodeRequestBody(header RequestHeader, body []byte) (RequestBody, error) {
	d := newRealDecoder(body)
	switch header.APIKey {
	case ApiKeyApiVersions:
		return decodeAPIVersionsRequest(d)
	case ApiKeyDescribeTopicPartitions:
		return decodeDescribeTopicPartitionsRequest(d)
	case ApiKeyFetch:
		return decodeFetchRequest(d)
	default:
		return nil, ErrMalformedRequest
	}
}
