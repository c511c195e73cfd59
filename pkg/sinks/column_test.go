package sinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_AppendingWrites(t *testing.T) {
	col := NewColumn[int32](Int32)
	require.NoError(t, col.Write([]int32{1, 2, 3}, []bool{false, false, false}, 0, 3, true))
	require.NoError(t, col.Write([]int32{4, 5}, []bool{false, true}, 3, 5, true))

	assert.Equal(t, []int32{1, 2, 3, 4, 5}, col.Data())
	assert.Equal(t, []bool{false, false, false, false, true}, col.Nulls())
	assert.Equal(t, 5, col.Len())
}

func TestColumn_BackfillWrite(t *testing.T) {
	col := NewColumn[int64](Int64)
	// Phase one wrote rows 2..4; phase two backfills 0..2.
	require.NoError(t, col.Write([]int64{30, 40}, []bool{false, false}, 2, 4, true))
	require.NoError(t, col.Write([]int64{0, 20}, []bool{true, false}, 0, 2, false))

	assert.Equal(t, []int64{0, 20, 30, 40}, col.Data())
	assert.Equal(t, []bool{true, false, false, false}, col.Nulls())
}

func TestColumn_ReadBack(t *testing.T) {
	col := NewColumn[int8](Int8)
	require.NoError(t, col.Write([]int8{1, 2, 3, 4}, []bool{false, true, false, false}, 0, 4, true))

	values := make([]int8, 2)
	nulls := make([]bool, 2)
	require.NoError(t, col.Read(values, nulls, 1, 3))
	assert.Equal(t, []int8{2, 3}, values)
	assert.Equal(t, []bool{true, false}, nulls)
}

func TestColumn_RejectsWrongChunkType(t *testing.T) {
	col := NewColumn[int8](Int8)
	err := col.Write([]int64{1}, []bool{false}, 0, 1, true)
	require.Error(t, err)
}

func TestMemoryFactory_SinksAreReadable(t *testing.T) {
	f := NewMemoryFactory()
	sink, err := f.Int16Sink(0)
	require.NoError(t, err)
	_, readable := sink.(Source)
	assert.True(t, readable)

	str, err := f.StringSink(0)
	require.NoError(t, err)
	_, readable = str.(Source)
	assert.True(t, readable)
}

func TestDataType_Strings(t *testing.T) {
	assert.Equal(t, "int8", Int8.String())
	assert.Equal(t, "timestamp", Timestamp.String())
	assert.Equal(t, "unknown", DataType(99).String())
}
