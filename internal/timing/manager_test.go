package timing

import (
	"math"
	"testing"
	"time"

	"github.com/warehouse-sim/backend/internal/models"
)

func coord(aisle, rack int) models.Coordinate {
	return models.Coordinate{Aisle: aisle, Rack: rack}
}

func TestMovementType(t *testing.T) {
	m := NewManager(DefaultConfig())

	cases := []struct {
		start, end models.Coordinate
		want       models.MovementType
	}{
		{coord(5, 3), coord(5, 9), models.MovementHorizontal},
		{coord(3, 10), coord(7, 10), models.MovementVertical},
		{coord(2, 2), coord(4, 8), models.MovementDiagonal},
		{coord(1, 1), coord(1, 1), models.MovementDiagonal}, // identical points classify as neither axis
	}
	for _, tc := range cases {
		if got := m.MovementType(tc.start, tc.end); got != tc.want {
			t.Errorf("MovementType(%s, %s) = %s, want %s", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestDuration(t *testing.T) {
	m := NewManager(DefaultConfig())

	t.Run("identical points get the fixed minimum", func(t *testing.T) {
		if got := m.Duration(coord(4, 4), coord(4, 4)); got != MinDuration {
			t.Errorf("Expected %v for identical points, got %v", MinDuration, got)
		}
	})

	t.Run("horizontal scales with rack delta", func(t *testing.T) {
		got := m.Duration(coord(5, 3), coord(5, 9))
		if math.Abs(got-6*0.35) > 1e-9 {
			t.Errorf("Expected 2.1s, got %v", got)
		}
	})

	t.Run("vertical is exactly linear in aisle delta", func(t *testing.T) {
		one := m.Duration(coord(3, 1), coord(4, 1))
		two := m.Duration(coord(3, 1), coord(5, 1))
		if math.Abs(two-2*one) > 1e-9 {
			t.Errorf("Expected |Δaisle|=2 to cost exactly twice |Δaisle|=1: %v vs %v", two, one)
		}
	})

	t.Run("diagonal is the sum of both axis components", func(t *testing.T) {
		got := m.Duration(coord(2, 2), coord(4, 8))
		want := 6*0.35 + 2*7.0
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected %v, got %v", want, got)
		}
		// Never cheaper than either pure component.
		if got < m.Duration(coord(2, 2), coord(2, 8)) || got < m.Duration(coord(2, 2), coord(4, 2)) {
			t.Error("Diagonal duration must be at least each pure component")
		}
	})
}

func TestMovementLifecycle(t *testing.T) {
	m := NewManager(DefaultConfig())
	start := time.Now()

	token := m.StartMovement(coord(1, 1), coord(1, 5), start)
	if token.Duration <= 0 {
		t.Fatalf("Expected positive duration, got %v", token.Duration)
	}
	if m.Current() == nil {
		t.Fatal("Expected an in-flight movement")
	}

	res := m.Update(start.Add(time.Duration(token.Duration/2*float64(time.Second))))
	if !res.InProgress {
		t.Fatalf("Expected in-progress at half time, got %+v", res)
	}
	if res.Progress <= 0 || res.Progress >= 1 {
		t.Errorf("Expected progress in (0,1), got %v", res.Progress)
	}

	res = m.Update(start.Add(time.Duration((token.Duration + 1) * float64(time.Second))))
	if !res.Complete {
		t.Fatalf("Expected completion, got %+v", res)
	}
	if m.Current() != nil {
		t.Error("Expected current token cleared after completion")
	}

	history := m.History()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
	if !history[0].IsCompleted || history[0].EndTime == nil {
		t.Error("Expected completed history entry with end time")
	}

	aisles, racks := m.Totals()
	if aisles != 0 || racks != 4 {
		t.Errorf("Expected totals (0,4), got (%d,%d)", aisles, racks)
	}
}

func TestUpdateWithoutMovement(t *testing.T) {
	m := NewManager(DefaultConfig())
	res := m.Update(time.Now())
	if res.InProgress || res.Complete {
		t.Errorf("Expected empty result without a movement, got %+v", res)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Fatalf("Default config rejected: %v", err)
		}
	})

	t.Run("non-positive values rejected", func(t *testing.T) {
		bad := DefaultConfig()
		bad.AisleTraversalTime = 0
		if err := bad.Validate(); err == nil {
			t.Error("Expected error for zero aisle traversal time")
		}

		bad = DefaultConfig()
		bad.HorizontalMovementTime = -0.1
		if err := bad.Validate(); err == nil {
			t.Error("Expected error for negative horizontal movement time")
		}
	})
}

func TestReset(t *testing.T) {
	m := NewManager(DefaultConfig())
	now := time.Now()
	m.StartMovement(coord(1, 1), coord(5, 1), now)
	m.Update(now.Add(time.Hour))
	m.Reset()

	if m.Current() != nil || len(m.History()) != 0 {
		t.Error("Expected empty manager after reset")
	}
	if a, r := m.Totals(); a != 0 || r != 0 {
		t.Errorf("Expected zeroed totals, got (%d,%d)", a, r)
	}
}
