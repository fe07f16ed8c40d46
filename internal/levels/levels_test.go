package levels

import "testing"

func TestTableIntegrity(t *testing.T) {
	seen := make(map[int]bool)
	for _, l := range Table {
		if seen[l.Number] {
			t.Fatalf("duplicate level number %d", l.Number)
		}
		seen[l.Number] = true

		if l.CoinsPerTap <= 0 {
			t.Fatalf("level %d has non-positive coins per tap", l.Number)
		}
		if l.NextLevel != 0 {
			if _, ok := Find(l.NextLevel); !ok {
				t.Fatalf("level %d points to unknown next level %d", l.Number, l.NextLevel)
			}
		}
	}
}

func TestNext(t *testing.T) {
	first, ok := Find(1)
	if !ok {
		t.Fatal("level 1 missing")
	}
	next, ok := Next(first)
	if !ok || next.Number != 2 {
		t.Fatalf("Next(1) = %v, %v; want level 2", next.Number, ok)
	}

	last := Table[len(Table)-1]
	if _, ok := Next(last); ok {
		t.Fatalf("final level %d must have no next", last.Number)
	}
}

func TestFinalLevelRequiresAgencyApproval(t *testing.T) {
	last := Table[len(Table)-1]
	if last.Requirement.Type != RequirementAgencyApproval {
		t.Fatalf("final level requirement = %s; want %s", last.Requirement.Type, RequirementAgencyApproval)
	}
}
