package protocol

// Decoder is the exported form of the packetDecoder cursor, for packages
// outside protocol that need the same primitive vocabulary over their own
// byte slices -- namely the kraft package's record-batch decoder, which
// shares every primitive (varints, compact strings/arrays, UUIDs) with the
// wire codec per SPEC_FULL.md's C1 component description.
type Decoder struct {
	d *realDecoder
}

// NewDecoder wraps buf for sequential decoding starting at offset 0.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{d: newRealDecoder(buf)}
}

func (c *Decoder) Remaining() int { return c.d.remaining() }

func (c *Decoder) GetInt8() (int8, error)   { return c.d.getInt8() }
func (c *Decoder) GetInt16() (int16, error) { return c.d.getInt16() }
func (c *Decoder) GetInt32() (int32, error) { return c.d.getInt32() }
func (c *Decoder) GetInt64() (int64, error) { return c.d.getInt64() }
func (c *Decoder) GetUint32() (uint32, error) { return c.d.getUint32() }
func (c *Decoder) GetBool() (bool, error)   { return c.d.getBool() }

func (c *Decoder) GetUnsignedVarint() (uint64, error) { return c.d.getUnsignedVarint() }
func (c *Decoder) GetVarint() (int64, error)           { return c.d.getVarint() }

func (c *Decoder) GetCompactString() (string, error)             { return c.d.getCompactString() }
func (c *Decoder) GetCompactNullableString() (*string, error)    { return c.d.getCompactNullableString() }
func (c *Decoder) GetCompactArrayLength() (int, error)           { return c.d.getCompactArrayLength() }
func (c *Decoder) GetRawBytes(n int) ([]byte, error)             { return c.d.getRawBytes(n) }
func (c *Decoder) GetUUID() (UUID, error)                        { return c.d.getUUID() }
func (c *Decoder) TagBuffer() error                              { return c.d.tagBuffer() }
