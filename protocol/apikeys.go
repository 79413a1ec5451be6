package protocol

// API keys this broker understands. Values match the Kafka protocol's
// global API key registry even though this broker only answers three of
// them.
const (
	ApiKeyFetch                   int16 = 1
	ApiKeyApiVersions              int16 = 18
	ApiKeyDescribeTopicPartitions  int16 = 75
)

// apiVersionRange is one row of the supported-version table. minVersion
// and maxVersion bound the versions this broker will actually dispatch
// (SPEC_FULL.md §4.4); advertisedMinVersion is the lower bound shown in
// the ApiVersions advertisement (§4.8), which for Fetch is wider than
// what's actually accepted: a real Kafka client probes the advertised
// range and retries, so the broker must claim 0-16 even though it only
// ever dispatches v16.
type apiVersionRange struct {
	apiKey               int16
	minVersion           int16
	maxVersion           int16
	advertisedMinVersion int16
}

// SupportedAPIs is the broker's fixed advertisement, in the order
// SPEC_FULL.md §4.8 specifies: ApiVersions, Fetch, DescribeTopicPartitions.
var SupportedAPIs = []apiVersionRange{
	{apiKey: ApiKeyApiVersions, minVersion: 0, maxVersion: 4, advertisedMinVersion: 0},
	{apiKey: ApiKeyFetch, minVersion: 16, maxVersion: 16, advertisedMinVersion: 0},
	{apiKey: ApiKeyDescribeTopicPartitions, minVersion: 0, maxVersion: 0, advertisedMinVersion: 0},
}

// IsSupportedVersion reports whether (apiKey, apiVersion) is one this
// broker will dispatch, per SPEC_FULL.md §4.4.
func IsSupportedVersion(apiKey, apiVersion int16) bool {
	for _, r := range SupportedAPIs {
		if r.apiKey == apiKey {
			return apiVersion >= r.minVersion && apiVersion <= r.maxVersion
		}
	}
	return false
}
