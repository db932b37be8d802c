package unavailable

import (
	"context"
	"testing"

	"communityhub/internal/adapters/storage/storagetest"
	domain "communityhub/internal/domain/unavailable"
)

func mustParse(t *testing.T, s string) domain.UnavailableDate {
	t.Helper()
	d, err := domain.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSQLiteStore_AddListRemove(t *testing.T) {
	s := NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	for _, d := range []string{"2025-12-25", "2025-01-01", "2025-06-15"} {
		added, err := s.Add(ctx, mustParse(t, d))
		if err != nil {
			t.Fatalf("Add(%s): %v", d, err)
		}
		if !added {
			t.Errorf("Add(%s) = false, want true", d)
		}
	}

	added, err := s.Add(ctx, mustParse(t, "2025-12-25"))
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("adding an existing date should report false")
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-01-01", "2025-06-15", "2025-12-25"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i, d := range got {
		if d.String() != want[i] {
			t.Errorf("List[%d] = %s, want %s", i, d, want[i])
		}
	}

	removed, err := s.Remove(ctx, mustParse(t, "2025-06-15"))
	if err != nil || !removed {
		t.Errorf("Remove = %v, %v; want true, nil", removed, err)
	}
	removed, err = s.Remove(ctx, mustParse(t, "2025-06-15"))
	if err != nil || removed {
		t.Errorf("second Remove = %v, %v; want false, nil", removed, err)
	}
}

func TestSQLiteStore_ListEmpty(t *testing.T) {
	s := NewSQLiteStore(storagetest.Open(t))
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("List = %v, want empty", got)
	}
}
