package vkrender

import (
	"reflect"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func family(count uint32, bits ...vk.QueueFlagBits) vk.QueueFamilyProperties {
	var flags vk.QueueFlags
	for _, b := range bits {
		flags |= vk.QueueFlags(b)
	}
	return vk.QueueFamilyProperties{QueueFlags: flags, QueueCount: count}
}

func TestFindQueueFamilies(t *testing.T) {
	tests := []struct {
		name     string
		families []vk.QueueFamilyProperties
		present  []bool
		want     QueueFamilyIndices
	}{
		{
			name:     "single universal family",
			families: []vk.QueueFamilyProperties{family(16, vk.QueueGraphicsBit, vk.QueueComputeBit, vk.QueueTransferBit)},
			present:  []bool{true},
			want: QueueFamilyIndices{
				Graphics: someIndex(0),
				Present:  someIndex(0),
				Compute:  someIndex(0),
				Transfer: someIndex(0),
			},
		},
		{
			name: "dedicated compute and transfer",
			families: []vk.QueueFamilyProperties{
				family(16, vk.QueueGraphicsBit, vk.QueueComputeBit, vk.QueueTransferBit),
				family(8, vk.QueueComputeBit, vk.QueueTransferBit),
				family(2, vk.QueueTransferBit),
			},
			present: []bool{true, false, false},
			want: QueueFamilyIndices{
				Graphics: someIndex(0),
				Present:  someIndex(0),
				Compute:  someIndex(1),
				Transfer: someIndex(2),
			},
		},
		{
			name: "present prefers the graphics family",
			families: []vk.QueueFamilyProperties{
				family(1, vk.QueueTransferBit),
				family(16, vk.QueueGraphicsBit),
			},
			present: []bool{true, true},
			want: QueueFamilyIndices{
				Graphics: someIndex(1),
				Present:  someIndex(1),
				Transfer: someIndex(0),
			},
		},
		{
			name: "separate present family",
			families: []vk.QueueFamilyProperties{
				family(16, vk.QueueGraphicsBit),
				family(1, vk.QueueTransferBit),
			},
			present: []bool{false, true},
			want: QueueFamilyIndices{
				Graphics: someIndex(0),
				Present:  someIndex(1),
				Transfer: someIndex(1),
			},
		},
		{
			name: "transfer ties keep the first",
			families: []vk.QueueFamilyProperties{
				family(16, vk.QueueGraphicsBit, vk.QueueComputeBit),
				family(2, vk.QueueTransferBit),
				family(2, vk.QueueTransferBit),
			},
			present: []bool{true, false, false},
			want: QueueFamilyIndices{
				Graphics: someIndex(0),
				Present:  someIndex(0),
				Compute:  someIndex(0),
				Transfer: someIndex(1),
			},
		},
		{
			name: "empty families are ignored",
			families: []vk.QueueFamilyProperties{
				family(0, vk.QueueGraphicsBit),
				family(4, vk.QueueGraphicsBit),
			},
			present: []bool{true, true},
			want: QueueFamilyIndices{
				Graphics: someIndex(1),
				Present:  someIndex(1),
				Transfer: someIndex(1),
			},
		},
		{
			name:     "no graphics",
			families: []vk.QueueFamilyProperties{family(4, vk.QueueComputeBit)},
			present:  []bool{false},
			want: QueueFamilyIndices{
				Compute:  someIndex(0),
				Transfer: someIndex(0),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findQueueFamilies(tt.families, tt.present)
			if got != tt.want {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	q := QueueFamilyIndices{Graphics: someIndex(0)}
	if q.IsComplete() {
		t.Error("complete without present")
	}
	q.Present = someIndex(2)
	if !q.IsComplete() {
		t.Error("incomplete with graphics and present")
	}
}

func TestUniqueFamilies(t *testing.T) {
	tests := []struct {
		q    QueueFamilyIndices
		want []uint32
	}{
		{QueueFamilyIndices{Graphics: someIndex(0), Present: someIndex(0), Transfer: someIndex(0)}, []uint32{0}},
		{QueueFamilyIndices{Graphics: someIndex(0), Present: someIndex(1), Transfer: someIndex(2)}, []uint32{0, 1, 2}},
		{QueueFamilyIndices{Graphics: someIndex(1), Present: someIndex(0), Transfer: someIndex(1)}, []uint32{1, 0}},
		{QueueFamilyIndices{Graphics: someIndex(3), Present: someIndex(3)}, []uint32{3}},
	}
	for _, tt := range tests {
		if got := tt.q.uniqueFamilies(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("uniqueFamilies(%+v) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestQueueCreateInfos(t *testing.T) {
	q := QueueFamilyIndices{Graphics: someIndex(0), Present: someIndex(1), Transfer: someIndex(1)}
	infos := queueCreateInfos(q)
	if len(infos) != 2 {
		t.Fatalf("got %d infos, want 2", len(infos))
	}
	for i, info := range infos {
		if info.QueueFamilyIndex != uint32(i) || info.QueueCount != 1 || info.PQueuePriorities[0] != 1.0 {
			t.Errorf("info %d = %+v", i, info)
		}
	}
}

func TestOptionalIndexString(t *testing.T) {
	if s := (OptionalIndex{}).String(); s != "unresolved" {
		t.Errorf("zero = %q", s)
	}
	if s := someIndex(4).String(); s != "4" {
		t.Errorf("someIndex(4) = %q", s)
	}
}
