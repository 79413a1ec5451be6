package protocol

// ApiVersionsRequest (API key 18) carries no meaningful body in any version
// this broker supports; any bytes present are ignored per SPEC_FULL.md §4.3.
type ApiVersionsRequest struct{}

func (*ApiVersionsRequest) requestBody() {}

func decodeAPIVersionsRequest(d packetDecoder) (*ApiVersionsRequest, error) {
	_ = d // remaining bytes intentionally unconsumed and ignored
	return &ApiVersionsRequest{}, nil
}

// ApiVersion is one row of an ApiVersionsResponse's advertised key/range.
type ApiVersion struct {
	APIKey     int16
	MinVersion int16
	MaxVersion int16
}

// ApiVersionsResponse is also used, with ErrorCode set to
// ErrUnsupportedVersion, as the fallback shape the dispatcher sends for any
// request whose (api_key, api_version) is not in the supported table
// (SPEC_FULL.md §4.7 rule 1) -- this is the one case where the response API
// does not match the request API.
type ApiVersionsResponse struct {
	ErrorCode       KError
	ApiVersions     []ApiVersion
	ThrottleTimeMs  int32
}

// DefaultApiVersionsResponse builds the broker's fixed advertisement:
// {18: 0-4, 1: 0-16, 75: 0-0} per SPEC_FULL.md §4.8.
func DefaultApiVersionsResponse(errorCode KError) *ApiVersionsResponse {
	versions := make([]ApiVersion, len(SupportedAPIs))
	for i, r := range SupportedAPIs {
		versions[i] = ApiVersion{APIKey: r.apiKey, MinVersion: r.advertisedMinVersion, MaxVersion: r.maxVersion}
	}
	return &ApiVersionsResponse{
		ErrorCode:   errorCode,
		ApiVersions: versions,
	}
}

func (r *ApiVersionsResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.ErrorCode))

	if err := pe.putCompactArrayLength(len(r.ApiVersions)); err != nil {
		return err
	}
	for _, v := range r.ApiVersions {
		pe.putInt16(v.APIKey)
		pe.putInt16(v.MinVersion)
		pe.putInt16(v.MaxVersion)
		pe.tagBuffer()
	}

	pe.putInt32(r.ThrottleTimeMs)
	pe.tagBuffer()
	return nil
}
