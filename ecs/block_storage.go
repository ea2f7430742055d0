package ecs

const (
	blockSize = 64
)

// blockStorage stores values of a specific type `T` in fixed-size blocks.
// Slots are stable for the lifetime of a value; freed slots are reused.
// Each filled slot remembers the entity that owns it.
type blockStorage[T any] struct {
	blocks    [][blockSize]T
	owners    [][blockSize]EntityId
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
}

// Append stores item for owner and returns its slot.
func (bs *blockStorage[T]) Append(owner EntityId, item T) int {
	var index int
	if len(bs.freeSlots) > 0 {
		index = bs.freeSlots[len(bs.freeSlots)-1]
		bs.freeSlots = bs.freeSlots[:len(bs.freeSlots)-1]
	} else {
		index = bs.nextIndex
		bs.nextIndex++
	}

	blockIdx := index / blockSize
	slotIdx := index % blockSize

	if blockIdx >= len(bs.blocks) {
		bs.blocks = append(bs.blocks, [blockSize]T{})
		bs.owners = append(bs.owners, [blockSize]EntityId{})
		bs.filled = append(bs.filled, [blockSize]bool{})
	}

	bs.blocks[blockIdx][slotIdx] = item
	bs.owners[blockIdx][slotIdx] = owner
	bs.filled[blockIdx][slotIdx] = true
	return index
}

// Get returns a pointer to the value at the given slot, or nil if the slot is empty.
func (bs *blockStorage[T]) Get(index int) *T {
	if !bs.Has(index) {
		return nil
	}
	return &bs.blocks[index/blockSize][index%blockSize]
}

// Delete marks a slot as empty and zeroes the value it held.
func (bs *blockStorage[T]) Delete(index int) {
	if !bs.Has(index) {
		return
	}

	blockIdx := index / blockSize
	slotIdx := index % blockSize

	var zero T
	bs.blocks[blockIdx][slotIdx] = zero
	bs.owners[blockIdx][slotIdx] = NoEntity
	bs.filled[blockIdx][slotIdx] = false
	bs.freeSlots = append(bs.freeSlots, index)
}

// Has checks if a value exists at the given slot.
func (bs *blockStorage[T]) Has(index int) bool {
	if index < 0 || index >= bs.nextIndex {
		return false
	}
	return bs.filled[index/blockSize][index%blockSize]
}

// Len returns the number of filled slots.
func (bs *blockStorage[T]) Len() int {
	return bs.nextIndex - len(bs.freeSlots)
}

// Each calls fn for every filled slot in slot order until fn returns false.
func (bs *blockStorage[T]) Each(fn func(owner EntityId, value *T) bool) {
	for i := 0; i < bs.nextIndex; i++ {
		blockIdx := i / blockSize
		slotIdx := i % blockSize

		if !bs.filled[blockIdx][slotIdx] {
			continue
		}
		if !fn(bs.owners[blockIdx][slotIdx], &bs.blocks[blockIdx][slotIdx]) {
			return
		}
	}
}
