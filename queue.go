package vkrender

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// OptionalIndex is a queue family index that may be unresolved.
type OptionalIndex struct {
	Index uint32
	Valid bool
}

func someIndex(i uint32) OptionalIndex { return OptionalIndex{Index: i, Valid: true} }

func (o OptionalIndex) String() string {
	if !o.Valid {
		return "unresolved"
	}
	return fmt.Sprint(o.Index)
}

// QueueFamilyIndices assigns queue families of one physical device to roles.
type QueueFamilyIndices struct {
	Graphics OptionalIndex
	Present  OptionalIndex
	Compute  OptionalIndex
	Transfer OptionalIndex
}

// IsComplete reports whether the device can render and present.
func (q QueueFamilyIndices) IsComplete() bool {
	return q.Graphics.Valid && q.Present.Valid
}

// SeparatePresent is true when images cross between two queue families.
func (q QueueFamilyIndices) SeparatePresent() bool {
	return q.Graphics.Index != q.Present.Index
}

// uniqueFamilies returns the distinct graphics, present and transfer
// families in that order.
func (q QueueFamilyIndices) uniqueFamilies() []uint32 {
	var out []uint32
	for _, idx := range []OptionalIndex{q.Graphics, q.Present, q.Transfer} {
		if !idx.Valid {
			continue
		}
		seen := false
		for _, f := range out {
			if f == idx.Index {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, idx.Index)
		}
	}
	return out
}

func hasFlag(flags vk.QueueFlags, bit vk.QueueFlagBits) bool {
	return flags&vk.QueueFlags(bit) != 0
}

// capabilityScore counts the graphics and compute bits of a family. A
// transfer-only family scores 0.
func capabilityScore(flags vk.QueueFlags) int {
	score := 0
	if hasFlag(flags, vk.QueueGraphicsBit) {
		score++
	}
	if hasFlag(flags, vk.QueueComputeBit) {
		score++
	}
	return score
}

// findQueueFamilies resolves queue roles from the family list and the
// per-family present support. Graphics takes the first graphics family.
// Present prefers the graphics family, then the first family that can
// present. Compute prefers a family without graphics. Transfer prefers the
// lowest capability score, first match on ties.
func findQueueFamilies(families []vk.QueueFamilyProperties, present []bool) QueueFamilyIndices {
	var q QueueFamilyIndices
	bestTransfer := -1

	for i, family := range families {
		idx := uint32(i)
		if family.QueueCount == 0 {
			continue
		}
		flags := family.QueueFlags

		if hasFlag(flags, vk.QueueGraphicsBit) && !q.Graphics.Valid {
			q.Graphics = someIndex(idx)
		}
		if i < len(present) && present[i] && !q.Present.Valid {
			q.Present = someIndex(idx)
		}
		if hasFlag(flags, vk.QueueComputeBit) {
			if !q.Compute.Valid || (!hasFlag(flags, vk.QueueGraphicsBit) && q.Compute == q.Graphics) {
				q.Compute = someIndex(idx)
			}
		}
		// Graphics and compute families implicitly support transfer.
		if hasFlag(flags, vk.QueueTransferBit) || hasFlag(flags, vk.QueueGraphicsBit) || hasFlag(flags, vk.QueueComputeBit) {
			if score := capabilityScore(flags); bestTransfer < 0 || score < bestTransfer {
				bestTransfer = score
				q.Transfer = someIndex(idx)
			}
		}
	}

	if q.Graphics.Valid && q.Graphics.Index < uint32(len(present)) && present[q.Graphics.Index] {
		q.Present = q.Graphics
	}
	return q
}

// queueCreateInfos requests one queue at priority 1.0 from each distinct family.
func queueCreateInfos(q QueueFamilyIndices) []vk.DeviceQueueCreateInfo {
	families := q.uniqueFamilies()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
