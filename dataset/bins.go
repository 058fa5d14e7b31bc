package dataset

import "math"

// StorageKind 分桶下标的存储形态，按特征取值的基数选择最紧凑的一种。
type StorageKind uint8

const (
	StorageNull  StorageKind = iota // 只有取值 0，不占存储，所有文档都在 0 号桶
	StorageBit                      // <= 2 个取值，每文档 1 bit
	StorageByte                     // <= 127 个取值，每文档 1 字节
	StorageShort                    // <= 32767 个取值，每文档 2 字节
)

const (
	// MaxByteValues byte 存储可容纳的最大不同取值数
	MaxByteValues = math.MaxInt8
	// MaxShortValues short 存储可容纳的最大不同取值数，超过即不支持
	MaxShortValues = math.MaxInt16
)

func (k StorageKind) String() string {
	switch k {
	case StorageNull:
		return "null"
	case StorageBit:
		return "bit"
	case StorageByte:
		return "byte"
	case StorageShort:
		return "short"
	default:
		return "unknown"
	}
}

// Bins 是一个特征在当前批次内所有文档的分桶下标。
// 每种存储形态只使用对应的一个缓冲区；形态在构建时按特征选定一次，
// 批量读写（fill / Decode）只在入口分派一次，循环内直接操作具体缓冲区。
type Bins struct {
	kind   StorageKind
	n      int
	bits   []uint64
	bytes  []int8
	shorts []int16
}

// NewBins 为 n 个文档分配指定形态的存储
func NewBins(kind StorageKind, n int) *Bins {
	b := &Bins{kind: kind, n: n}
	switch kind {
	case StorageBit:
		b.bits = make([]uint64, (n+63)/64)
	case StorageByte:
		b.bytes = make([]int8, n)
	case StorageShort:
		b.shorts = make([]int16, n)
	}
	return b
}

func (b *Bins) Kind() StorageKind { return b.kind }

// Len 文档数
func (b *Bins) Len() int { return b.n }

// Get 读取第 d 个文档的分桶下标
func (b *Bins) Get(d int) int {
	switch b.kind {
	case StorageBit:
		return int(b.bits[d>>6] >> (uint(d) & 63) & 1)
	case StorageByte:
		return int(b.bytes[d])
	case StorageShort:
		return int(b.shorts[d])
	default:
		return 0
	}
}

// fill 写入全部文档的分桶下标，len(idx) 必须等于 Len()。
// 调用方保证下标在当前形态的容量内。
func (b *Bins) fill(idx []int) {
	switch b.kind {
	case StorageBit:
		for i := range b.bits {
			b.bits[i] = 0
		}
		for d, v := range idx {
			if v != 0 {
				b.bits[d>>6] |= 1 << (uint(d) & 63)
			}
		}
	case StorageByte:
		for d, v := range idx {
			b.bytes[d] = int8(v)
		}
	case StorageShort:
		for d, v := range idx {
			b.shorts[d] = int16(v)
		}
	}
}

// Decode 把全部分桶下标解码到 dst（容量不足时重新分配）并返回。
func (b *Bins) Decode(dst []int) []int {
	if cap(dst) < b.n {
		dst = make([]int, b.n)
	}
	dst = dst[:b.n]
	switch b.kind {
	case StorageBit:
		for d := range dst {
			dst[d] = int(b.bits[d>>6] >> (uint(d) & 63) & 1)
		}
	case StorageByte:
		for d, v := range b.bytes {
			dst[d] = int(v)
		}
	case StorageShort:
		for d, v := range b.shorts {
			dst[d] = int(v)
		}
	default:
		for d := range dst {
			dst[d] = 0
		}
	}
	return dst
}

// SizeBytes 存储占用的字节数
func (b *Bins) SizeBytes() int {
	return len(b.bits)*8 + len(b.bytes) + len(b.shorts)*2
}
