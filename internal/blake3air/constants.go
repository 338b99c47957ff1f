package blake3air

// IV is Blake3's initialization vector, shared with Blake2s.
var IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// MsgPermutation is Blake3's per-round message word permutation.
var MsgPermutation = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

const (
	FlagChunkStart = 1 << 0
	FlagChunkEnd   = 1 << 1
	FlagRoot       = 1 << 3
)
