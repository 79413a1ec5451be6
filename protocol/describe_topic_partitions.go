package protocol

// TopicAuthorizedOperations is the constant this broker advertises for
// every topic response, present or missing, per SPEC_FULL.md §4.6 and §9's
// resolution of the source's inconsistency: the wire field is a 4-byte
// integer, so the 0x00000DF8 form is the only defensible choice and this
// implementation uses it unconditionally rather than special-casing
// "missing" topics with the 1-byte-sized 0xDF the source also used.
const TopicAuthorizedOperations int32 = 0x00000DF8

// DescribeTopicPartitionsTopicRequest is one entry of the request's topic
// array.
type DescribeTopicPartitionsTopicRequest struct {
	Name string
}

// DescribeTopicPartitionsRequest (API key 75, version 0).
type DescribeTopicPartitionsRequest struct {
	Topics                 []DescribeTopicPartitionsTopicRequest
	ResponsePartitionLimit int32
	// Cursor is read per SPEC_FULL.md §4.3/§9 but never acted on: the
	// single wire byte is consumed so the wire stays aligned and kept here
	// (nil when it is 0 or 0xFF). Kafka's real cursor is a structured
	// (topic, partition) pair; this broker does not implement pagination.
	Cursor *int8
}

func (*DescribeTopicPartitionsRequest) requestBody() {}

func decodeDescribeTopicPartitionsRequest(d packetDecoder) (*DescribeTopicPartitionsRequest, error) {
	n, err := d.getCompactArrayLength()
	if err != nil {
		return nil, ErrMalformedRequest
	}

	req := &DescribeTopicPartitionsRequest{}
	if n > 0 {
		req.Topics = make([]DescribeTopicPartitionsTopicRequest, 0, n)
		for i := 0; i < n; i++ {
			name, err := d.getCompactString()
			if err != nil {
				return nil, ErrMalformedRequest
			}
			if err := d.tagBuffer(); err != nil {
				return nil, ErrMalformedRequest
			}
			req.Topics = append(req.Topics, DescribeTopicPartitionsTopicRequest{Name: name})
		}
	}

	limit, err := d.getInt32()
	if err != nil {
		return nil, ErrMalformedRequest
	}
	req.ResponsePartitionLimit = limit

	cursorByte, err := d.getInt8()
	if err != nil {
		return nil, ErrMalformedRequest
	}
	if cursorByte != 0 && cursorByte != -1 {
		c := cursorByte
		req.Cursor = &c
	}

	if err := d.tagBuffer(); err != nil {
		return nil, ErrMalformedRequest
	}

	return req, nil
}

// PartitionInfo is one partition entry inside a topic response, carrying
// the same fields as the wire shape plus PartitionEpoch (SPEC_FULL.md §3).
type PartitionInfo struct {
	ErrorCode                      KError
	PartitionID                    int32
	LeaderID                       int32
	LeaderEpoch                    int32
	Replicas                       []int32
	ISR                            []int32
	EligibleLeaderReplicas         []int32
	LastKnownEligibleLeaderReplicas []int32
	OfflineReplicas                []int32
	PartitionEpoch                 int32
}

func (p *PartitionInfo) encode(pe packetEncoder) error {
	pe.putInt16(int16(p.ErrorCode))
	pe.putInt32(p.PartitionID)
	pe.putInt32(p.LeaderID)
	pe.putInt32(p.LeaderEpoch)

	for _, arr := range [][]int32{p.Replicas, p.ISR, p.EligibleLeaderReplicas, p.LastKnownEligibleLeaderReplicas, p.OfflineReplicas} {
		if err := pe.putCompactArrayLength(len(arr)); err != nil {
			return err
		}
		for _, id := range arr {
			pe.putInt32(id)
		}
	}

	pe.tagBuffer()
	return nil
}

// DescribeTopicPartitionsTopicResponse is one topic entry of the response.
type DescribeTopicPartitionsTopicResponse struct {
	ErrorCode                 KError
	Name                      string
	TopicID                   UUID
	IsInternal                bool
	Partitions                []PartitionInfo
	TopicAuthorizedOperations int32
}

func (t *DescribeTopicPartitionsTopicResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(t.ErrorCode))
	if err := pe.putCompactString(t.Name); err != nil {
		return err
	}
	pe.putUUID(t.TopicID)
	pe.putBool(t.IsInternal)

	if err := pe.putCompactArrayLength(len(t.Partitions)); err != nil {
		return err
	}
	for i := range t.Partitions {
		if err := t.Partitions[i].encode(pe); err != nil {
			return err
		}
	}

	pe.putInt32(t.TopicAuthorizedOperations)
	pe.tagBuffer()
	return nil
}

// DescribeTopicPartitionsResponse (API key 75, version 0).
type DescribeTopicPartitionsResponse struct {
	ThrottleTimeMs int32
	Topics         []DescribeTopicPartitionsTopicResponse
}

// encode follows the wire order SPEC_FULL.md §3/§9 fix explicitly:
// throttle_time_ms, tag-buffer, topics array, tag-buffer, next-cursor. This
// differs from upstream Kafka's single terminal tag-buffer; it matches the
// majority of the reference implementation's iterations, which is the
// defensible choice §9 calls out.
func (r *DescribeTopicPartitionsResponse) encode(pe packetEncoder) error {
	pe.putInt32(r.ThrottleTimeMs)
	pe.tagBuffer()

	if err := pe.putCompactArrayLength(len(r.Topics)); err != nil {
		return err
	}
	for i := range r.Topics {
		if err := r.Topics[i].encode(pe); err != nil {
			return err
		}
	}
	pe.tagBuffer()

	// next-cursor: this broker never paginates, so the cursor is always
	// null (0xFF, matching the request-side null encoding noted in
	// SPEC_FULL.md §3).
	pe.putInt8(-1)
	return nil
}
