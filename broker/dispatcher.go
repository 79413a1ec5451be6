// Package broker implements the request dispatcher and TCP connection
// lifecycle: the pipeline that turns decoded requests into framed
// responses, and the accept loop that feeds it.
package broker

import (
	"context"

	"github.com/fork-the-planet/kraft-broker/logging"
	"github.com/fork-the-planet/kraft-broker/metadata"
	"github.com/fork-the-planet/kraft-broker/metrics"
	"github.com/fork-the-planet/kraft-broker/protocol"
	"github.com/fork-the-planet/kraft-broker/store"
)

// StoreProvider supplies a metadata.Store built from whatever is on disk
// right now. §5 requires the metadata log to be read fresh on every
// DescribeTopicPartitions/Fetch dispatch rather than cached, so Dispatcher
// calls this once per such dispatch instead of holding a Store directly.
// ResilientReader is the production implementation.
type StoreProvider interface {
	Store(ctx context.Context) (metadata.Store, error)
}

// Dispatcher validates a request's version, routes it to a per-API
// handler, and assembles the framed response, per SPEC_FULL.md §4.7.
type Dispatcher struct {
	Provider StoreProvider
	Messages store.MessageStore
	Log      logging.Logger
	Metrics  *metrics.Registry
}

// NewDispatcher builds a Dispatcher over the given collaborators. A nil
// Log is replaced with logging.Discard, and a nil Metrics is allowed (no
// counters are updated), so callers in tests don't have to wire either.
func NewDispatcher(provider StoreProvider, messages store.MessageStore, log logging.Logger, reg *metrics.Registry) *Dispatcher {
	if log == nil {
		log = logging.Discard
	}
	return &Dispatcher{Provider: provider, Messages: messages, Log: log, Metrics: reg}
}

// Handle decodes one framed request body (the bytes ReadFrame returned,
// length prefix already stripped), dispatches it, and returns the framed
// response bytes ready to write back to the connection.
func (d *Dispatcher) Handle(frame []byte) ([]byte, error) {
	header, body, err := protocol.DecodeHeader(frame)
	if err != nil {
		d.countDecodeError()
		d.Log.Warnf("decode failed: %v", err)
		return nil, err
	}

	d.Log.Debugf("dispatch api_key=%d api_version=%d correlation_id=%d", header.APIKey, header.APIVersion, header.CorrelationID)

	if !header.IsSupportedVersion() {
		// Version rejection is the one case where the response API does
		// not match the request API (§4.7 rule 1).
		resp := protocol.DefaultApiVersionsResponse(protocol.ErrUnsupportedVersion)
		return protocol.EncodeResponse(header.CorrelationID, resp)
	}

	reqBody, err := protocol.DecodeRequestBody(header, body)
	if err != nil {
		d.countDecodeError()
		d.Log.Warnf("decode failed for api_key=%d: %v", header.APIKey, err)
		return nil, err
	}

	switch req := reqBody.(type) {
	case *protocol.ApiVersionsRequest:
		if d.Metrics != nil {
			d.Metrics.IncApiVersions()
		}
		return protocol.EncodeResponse(header.CorrelationID, protocol.DefaultApiVersionsResponse(protocol.ErrNone))

	case *protocol.DescribeTopicPartitionsRequest:
		if d.Metrics != nil {
			d.Metrics.IncDescribeTopicPartitions()
		}
		resp := d.describeTopicPartitions(req)
		return protocol.EncodeResponse(header.CorrelationID, resp)

	case *protocol.FetchRequest:
		if d.Metrics != nil {
			d.Metrics.IncFetch()
		}
		resp := d.fetch(req)
		return protocol.EncodeResponse(header.CorrelationID, resp)

	default:
		return nil, protocol.ErrMalformedRequest
	}
}

func (d *Dispatcher) countDecodeError() {
	if d.Metrics != nil {
		d.Metrics.IncDecodeErrors()
	}
}

// metadataStore asks the provider for a fresh snapshot-backed store. A
// circuit-breaker trip or I/O failure surfaces here as an error; per §7
// that is not grounds to drop the connection, only to answer as if every
// requested topic were unknown.
func (d *Dispatcher) metadataStore() (metadata.Store, error) {
	return d.Provider.Store(context.Background())
}

// unknownTopicsByName builds the "all requested topics unknown" shape
// used when the metadata log can't be read at all.
func unknownTopicsByName(names []string) []metadata.TopicMetadata {
	out := make([]metadata.TopicMetadata, len(names))
	for i, n := range names {
		out[i] = metadata.TopicMetadata{ErrorCode: protocol.ErrUnknownTopicOrPartition, Name: n}
	}
	return out
}

// describeTopicPartitions queries the metadata store by the requested
// names and maps each TopicMetadata field-by-field into the wire response
// shape, per §4.7 rule 2.
func (d *Dispatcher) describeTopicPartitions(req *protocol.DescribeTopicPartitionsRequest) *protocol.DescribeTopicPartitionsResponse {
	names := make([]string, len(req.Topics))
	for i, t := range req.Topics {
		names[i] = t.Name
	}

	var entries []metadata.TopicMetadata
	st, err := d.metadataStore()
	if err != nil {
		d.Log.Warnf("metadata log unavailable, answering all topics unknown: %v", err)
		entries = unknownTopicsByName(names)
	} else {
		entries = st.ByNames(names)
	}

	topics := make([]protocol.DescribeTopicPartitionsTopicResponse, len(entries))
	for i, e := range entries {
		partitions := make([]protocol.PartitionInfo, len(e.Partitions))
		for j, p := range e.Partitions {
			partitions[j] = protocol.PartitionInfo{
				ErrorCode:      protocol.ErrNone,
				PartitionID:    p.PartitionID,
				LeaderID:       p.LeaderID,
				LeaderEpoch:    p.LeaderEpoch,
				Replicas:       p.Replicas,
				ISR:            p.ISR,
				PartitionEpoch: p.PartitionEpoch,
			}
		}
		topics[i] = protocol.DescribeTopicPartitionsTopicResponse{
			ErrorCode:                 e.ErrorCode,
			Name:                      e.Name,
			TopicID:                   e.ID,
			Partitions:                partitions,
			TopicAuthorizedOperations: protocol.TopicAuthorizedOperations,
		}
	}

	return &protocol.DescribeTopicPartitionsResponse{Topics: topics}
}

// fetch implements §4.7 rule 2's Fetch branch: only the first topic entry
// is consulted.
func (d *Dispatcher) fetch(req *protocol.FetchRequest) *protocol.FetchResponse {
	if len(req.Topics) == 0 {
		return &protocol.FetchResponse{}
	}

	topicID := req.Topics[0].TopicID

	st, err := d.metadataStore()
	if err != nil {
		d.Log.Warnf("metadata log unavailable, answering unknown topic: %v", err)
		return protocol.UnknownTopicFetchResponse(topicID)
	}

	entries := st.ByIDs([]string{topicID.String()})
	entry := entries[0]

	if entry.ErrorCode != protocol.ErrNone {
		return protocol.UnknownTopicFetchResponse(topicID)
	}

	ctx := context.Background()
	partitions := make([]protocol.FetchResponsePartition, len(entry.Partitions))
	for i, p := range entry.Partitions {
		records, err := d.Messages.ReadMessages(ctx, topicID, p.PartitionID, 0, req.MaxBytes)
		if err != nil {
			d.Log.Warnf("message store read failed for topic=%s partition=%d: %v", topicID, p.PartitionID, err)
		}
		partitions[i] = protocol.FetchResponsePartition{PartitionIndex: p.PartitionID, Records: records}
	}
	return protocol.EmptyTopicFetchResponse(topicID, partitions)
}
