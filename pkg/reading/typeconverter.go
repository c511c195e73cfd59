package reading

import (
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
)

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

func convertSlice[S, D number](src []S, dst []D, n int) {
	for i := 0; i < n; i++ {
		dst[i] = D(src[i])
	}
}

func convertInto[S number](src []S, dst interface{}, n int) error {
	switch d := dst.(type) {
	case []int8:
		convertSlice(src, d, n)
	case []int16:
		convertSlice(src, d, n)
	case []int32:
		convertSlice(src, d, n)
	case []int64:
		convertSlice(src, d, n)
	case []float32:
		convertSlice(src, d, n)
	case []float64:
		convertSlice(src, d, n)
	default:
		return errors.Newf(errors.ErrorTypeInternal,
			"cannot convert numeric chunk into %T", dst)
	}
	return nil
}

func convertChunk(src, dst interface{}, n int) error {
	switch s := src.(type) {
	case []int8:
		return convertInto(s, dst, n)
	case []int16:
		return convertInto(s, dst, n)
	case []int32:
		return convertInto(s, dst, n)
	case []int64:
		return convertInto(s, dst, n)
	case []float32:
		return convertInto(s, dst, n)
	case []float64:
		return convertInto(s, dst, n)
	default:
		return errors.Newf(errors.ErrorTypeInternal,
			"cannot convert numeric chunk from %T", src)
	}
}

func chunkLen(chunk interface{}) int {
	switch c := chunk.(type) {
	case []int8:
		return len(c)
	case []int16:
		return len(c)
	case []int32:
		return len(c)
	case []int64:
		return len(c)
	case []float32:
		return len(c)
	case []float64:
		return len(c)
	default:
		return 0
	}
}

// copyConverting streams [srcBegin, srcEnd) out of source, widens each
// chunk into dest's element type, and backfills dest starting at
// destBegin. This is the unification step that saves the second text
// pass when every intermediate numeric sink is readable.
func copyConverting(source sinks.Source, dest sinks.Sink, srcBegin, srcEnd, destBegin int64,
	srcChunk, destChunk interface{}, nullChunk []bool) error {
	step := int64(chunkLen(srcChunk))
	if step == 0 {
		return errors.New(errors.ErrorTypeInternal, "unification got a zero-length chunk")
	}
	if n := int64(chunkLen(destChunk)); n < step {
		step = n
	}
	for current := srcBegin; current < srcEnd; {
		count := srcEnd - current
		if count > step {
			count = step
		}
		if err := source.Read(srcChunk, nullChunk, current, current+count); err != nil {
			return err
		}
		if err := convertChunk(srcChunk, destChunk, int(count)); err != nil {
			return err
		}
		if err := dest.Write(destChunk, nullChunk, destBegin, destBegin+count, false); err != nil {
			return err
		}
		current += count
		destBegin += count
	}
	return nil
}
