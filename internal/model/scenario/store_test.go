package scenario_test

import (
	"testing"

	"github.com/lingualife/backend/internal/model/scenario"
)

func custom(id string) scenario.Scenario {
	return scenario.Scenario{
		ID:           id,
		Title:        "Custom " + id,
		Difficulty:   scenario.Beginner,
		Language:     "Chinese",
		LanguageCode: "zh",
	}
}

func TestListBuiltinsFirst(t *testing.T) {
	store := scenario.NewMemoryStore(scenario.Seed())
	store.SaveCustom(custom("c1"))

	got := store.List()
	if len(got) != 4 {
		t.Fatalf("expected 3 built-ins + 1 custom, got %d", len(got))
	}
	if got[len(got)-1].ID != "c1" {
		t.Fatalf("custom scenario should come after built-ins: %+v", got)
	}
}

func TestFindByID(t *testing.T) {
	store := scenario.NewMemoryStore(scenario.Seed())

	if _, ok := store.FindByID("japanese_barista"); !ok {
		t.Fatal("built-in scenario not found")
	}
	if _, ok := store.FindByID("nope"); ok {
		t.Fatal("unknown id reported as found")
	}
}

func TestReplaceCustomSwapsSet(t *testing.T) {
	store := scenario.NewMemoryStore(scenario.Seed())
	store.SaveCustom(custom("old"))

	store.ReplaceCustom([]scenario.Scenario{custom("new1"), custom("new2")})

	if _, ok := store.FindByID("old"); ok {
		t.Fatal("replaced scenario still present")
	}
	if _, ok := store.FindByID("new2"); !ok {
		t.Fatal("fetched scenario missing")
	}
	if len(store.List()) != 5 {
		t.Fatalf("unexpected list size %d", len(store.List()))
	}
}

func TestUpdateCustomKeepsID(t *testing.T) {
	store := scenario.NewMemoryStore(nil)
	store.SaveCustom(custom("c1"))

	updated := custom("c1")
	updated.Title = "Renamed"
	updated.ID = "should-be-ignored"
	if !store.UpdateCustom("c1", updated) {
		t.Fatal("update reported failure")
	}

	got, ok := store.FindByID("c1")
	if !ok || got.Title != "Renamed" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestUpdateCustomCannotTouchBuiltins(t *testing.T) {
	store := scenario.NewMemoryStore(scenario.Seed())
	if store.UpdateCustom("japanese_barista", custom("x")) {
		t.Fatal("built-in scenario must not be updatable")
	}
	if store.DeleteCustom("japanese_barista") {
		t.Fatal("built-in scenario must not be deletable")
	}
}

func TestDeleteCustom(t *testing.T) {
	store := scenario.NewMemoryStore(nil)
	store.SaveCustom(custom("c1"))
	store.SaveCustom(custom("c2"))

	if !store.DeleteCustom("c1") {
		t.Fatal("delete reported failure")
	}
	if _, ok := store.FindByID("c1"); ok {
		t.Fatal("deleted scenario still present")
	}
	if _, ok := store.FindByID("c2"); !ok {
		t.Fatal("sibling scenario vanished")
	}
}

func TestDifficultyValid(t *testing.T) {
	for _, d := range []scenario.Difficulty{scenario.Beginner, scenario.Intermediate, scenario.Advanced} {
		if !d.Valid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if scenario.Difficulty("Expert").Valid() {
		t.Error("unknown difficulty should be invalid")
	}
}
