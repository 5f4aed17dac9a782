package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1}, // scalar
		{Shape{5}, 5},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4}, 24},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("NumElements(%v): expected %d, got %d", tt.shape, tt.expected, got)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{}).Validate(); err != nil {
		t.Errorf("scalar shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestShapeEqualClone(t *testing.T) {
	s := Shape{2, 3, 4}

	if !s.Equal(Shape{2, 3, 4}) {
		t.Error("equal shapes reported unequal")
	}
	if s.Equal(Shape{2, 3}) {
		t.Error("shapes of different rank reported equal")
	}
	if s.Equal(Shape{2, 3, 5}) {
		t.Error("different shapes reported equal")
	}

	clone := s.Clone()
	clone[0] = 99
	if s[0] != 2 {
		t.Error("Clone shares storage with original")
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected []int
	}{
		{Shape{}, []int{}},
		{Shape{5}, []int{1}},
		{Shape{2, 3}, []int{3, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		if len(got) != len(tt.expected) {
			t.Errorf("ComputeStrides(%v): expected %v, got %v", tt.shape, tt.expected, got)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("ComputeStrides(%v): expected %v, got %v", tt.shape, tt.expected, got)
				break
			}
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		expected  Shape
		needed    bool
		expectErr bool
	}{
		{"same shape", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"stretch left", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"stretch right", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"missing dims", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"trailing plane", Shape{4, 2, 3}, Shape{2, 3}, Shape{4, 2, 3}, true, false},
		{"scalar", Shape{}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needed, err := BroadcastShapes(tt.a, tt.b)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertEqualShape(t, tt.expected, got, "broadcast result")
			if needed != tt.needed {
				t.Errorf("expected needsBroadcast=%v, got %v", tt.needed, needed)
			}
		})
	}
}
