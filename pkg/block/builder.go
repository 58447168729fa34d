package block

import (
	"math"

	"github.com/petermattis/goid"

	"github.com/GuinsooLab/witdb-sub009/pkg/util"
)

// BlockBuilder is the mutable, append-only counterpart to exactly one
// Block kind. Positions are appended strictly in order. Builders are
// owned by a single goroutine; there is no internal locking.
type BlockBuilder interface {
	PositionCount() int
	AppendNull()
	// AppendRange bulk-appends positions [offset, offset+length) of src.
	// src must be value-compatible with the builder's kind.
	AppendRange(src Block, offset, length int)
	Build() Block
	SizeInBytes() int64
	RetainedSizeInBytes() int64
}

// DebugOwnershipChecks makes every size-accounting call assert that the
// builder status is still touched by the goroutine that created it.
var DebugOwnershipChecks = false

const DefaultMaxPageSizeInBytes = 1024 * 1024

// PageBuilderStatus accumulates the bytes appended by all builders of one
// in-flight page. The engine polls IsFull to stop adding rows; the
// discipline is cooperative, there is no enforcement here.
type PageBuilderStatus struct {
	maxSizeInBytes int64
	currentSize    int64
}

func NewPageBuilderStatus(maxSizeInBytes int64) *PageBuilderStatus {
	if maxSizeInBytes <= 0 {
		maxSizeInBytes = DefaultMaxPageSizeInBytes
	}
	return &PageBuilderStatus{maxSizeInBytes: maxSizeInBytes}
}

func (st *PageBuilderStatus) MaxPageSizeInBytes() int64 {
	return st.maxSizeInBytes
}

func (st *PageBuilderStatus) SizeInBytes() int64 {
	return st.currentSize
}

func (st *PageBuilderStatus) IsFull() bool {
	return st.currentSize >= st.maxSizeInBytes
}

func (st *PageBuilderStatus) addBytes(n int) {
	st.currentSize += int64(n)
}

// BlockBuilderStatus accounts one builder's appended bytes against the
// shared page budget. Nil receivers are legal so builders can run without
// accounting.
type BlockBuilderStatus struct {
	page        *PageBuilderStatus
	currentSize int64
	owner       int64
}

func NewBlockBuilderStatus(page *PageBuilderStatus) *BlockBuilderStatus {
	return &BlockBuilderStatus{
		page:  page,
		owner: goid.Get(),
	}
}

func (st *BlockBuilderStatus) AddBytes(n int) {
	if st == nil {
		return
	}
	if DebugOwnershipChecks {
		util.AssertFunc(goid.Get() == st.owner)
	}
	st.currentSize += int64(n)
	if st.page != nil {
		st.page.addBytes(n)
	}
}

func (st *BlockBuilderStatus) SizeInBytes() int64 {
	if st == nil {
		return 0
	}
	return st.currentSize
}

// calcGrownCapacity plans builder array growth: roughly double, never
// below the original capacity hint, saturating instead of overflowing.
func calcGrownCapacity(current int, need int, hint int) int {
	if need > math.MaxInt/2 {
		return need
	}
	return util.GrownCapacity(current, need, hint)
}
