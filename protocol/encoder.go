package protocol

// Encoder is the exported form of the packetEncoder cursor, mirroring
// Decoder, for packages that build raw Kafka-shaped byte sequences outside
// the protocol package -- namely the kraft package's tests, which
// construct synthetic metadata-log batches.
type Encoder struct {
	e *realEncoder
}

// NewEncoder creates an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{e: newRealEncoder()}
}

func (c *Encoder) PutInt8(in int8)     { c.e.putInt8(in) }
func (c *Encoder) PutInt16(in int16)   { c.e.putInt16(in) }
func (c *Encoder) PutInt32(in int32)   { c.e.putInt32(in) }
func (c *Encoder) PutInt64(in int64)   { c.e.putInt64(in) }
func (c *Encoder) PutUint32(in uint32) { c.e.putUint32(in) }
func (c *Encoder) PutBool(in bool)     { c.e.putBool(in) }

func (c *Encoder) PutUnsignedVarint(in uint64) { c.e.putUnsignedVarint(in) }
func (c *Encoder) PutVarint(in int64)          { c.e.putVarint(in) }

func (c *Encoder) PutCompactString(s string) error          { return c.e.putCompactString(s) }
func (c *Encoder) PutCompactArrayLength(n int) error          { return c.e.putCompactArrayLength(n) }
func (c *Encoder) PutRawBytes(b []byte) error                { return c.e.putRawBytes(b) }
func (c *Encoder) PutUUID(u UUID)                             { c.e.putUUID(u) }
func (c *Encoder) TagBuffer()                                 { c.e.tagBuffer() }

func (c *Encoder) Bytes() []byte { return c.e.bytes() }
