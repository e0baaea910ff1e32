package codec

import "time"

// dtsEpochOffsetMicros is the number of microseconds between the DTS epoch
// and the Unix epoch (1970-01-01 UTC).
const dtsEpochOffsetMicros = 946_684_800_000_000

// DecodeDTS interprets an 8-byte big-endian unsigned integer as platform
// Standard Time Format and returns the corresponding UTC time. The low 12
// bits of the raw value are uniqueness bits and are discarded.
func DecodeDTS(raw uint64) time.Time {
	biased := raw - 0x8000_0000_0000_0000
	micros := (biased >> 12) + dtsEpochOffsetMicros
	millis := int64(micros / 1000)
	return time.UnixMilli(millis).UTC()
}
