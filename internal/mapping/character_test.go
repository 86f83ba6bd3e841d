package mapping

import (
	"context"
	"math"
	"slices"
	"testing"

	"encounterport/internal/source"
	"encounterport/internal/target"
)

func TestChallengeRating(t *testing.T) {
	cases := []struct {
		raw      string
		expected float64
	}{
		{"1/4", 0.25},
		{"1/2", 0.5},
		{"0.5", 0.5},
		{"24", 24},
		{" 3 ", 3},
		{"", 0},
		{"unknown", 0},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := ChallengeRating(tc.raw); math.Abs(got-tc.expected) > 1e-9 {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestProficiencyBonus(t *testing.T) {
	cases := map[float64]int{0: 2, 0.25: 2, 4: 2, 5: 3, 8: 3, 9: 4, 13: 5, 17: 6, 21: 7, 24: 7, 25: 8, 29: 9, 30: 9}
	for cr, expected := range cases {
		if got := ProficiencyBonus(cr); got != expected {
			t.Errorf("cr %v: expected %d, got %d", cr, expected, got)
		}
	}
}

func TestAbilityModifier(t *testing.T) {
	cases := map[int]int{1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 14: 2, 15: 2, 30: 10}
	for score, expected := range cases {
		if got := AbilityModifier(score); got != expected {
			t.Errorf("score %d: expected %d, got %d", score, expected, got)
		}
	}
}

func TestDecomposeSkillQuarterCR(t *testing.T) {
	pb := ProficiencyBonus(ChallengeRating("1/4"))
	if pb != 2 {
		t.Fatalf("expected proficiency bonus 2, got %d", pb)
	}
	if mod := AbilityModifier(14); mod != 2 {
		t.Fatalf("expected modifier 2, got %d", mod)
	}
	got := DecomposeSkill(4, 14, pb)
	if got != (target.Skill{Value: 1, Bonus: 0}) {
		t.Fatalf("expected proficient with no residual, got %+v", got)
	}
}

func TestDecomposeSkillMultiples(t *testing.T) {
	cases := []struct {
		name     string
		total    int
		score    int
		pb       int
		expected target.Skill
	}{
		{"untrained", 2, 14, 2, target.Skill{Value: 0, Bonus: 0}},
		{"expertise", 6, 14, 2, target.Skill{Value: 2, Bonus: 0}},
		{"proficient with residual", 9, 10, 3, target.Skill{Value: 1, Bonus: 6}},
		{"below untrained", -3, 10, 2, target.Skill{Value: 1, Bonus: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecomposeSkill(tc.total, tc.score, tc.pb); got != tc.expected {
				t.Fatalf("expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestDecomposeSkillRecomposes(t *testing.T) {
	for pb := 2; pb <= 9; pb++ {
		for score := 1; score <= 30; score++ {
			for total := -5; total <= 25; total++ {
				s := DecomposeSkill(total, score, pb)
				if s.Value < 0 || s.Value > 2 {
					t.Fatalf("total %d score %d pb %d: multiplier %d out of range", total, score, pb, s.Value)
				}
				if got := AbilityModifier(score) + s.Value*pb + s.Bonus; got != total {
					t.Fatalf("total %d score %d pb %d: recomposed to %d", total, score, pb, got)
				}
			}
		}
	}
}

func TestSpeedExpr(t *testing.T) {
	cases := []struct {
		name     string
		v        source.Scalar
		metric   bool
		expected string
	}{
		{"metric meters", source.Str("9"), true, "30"},
		{"metric with unit", source.Str("9 m"), true, "30"},
		{"imperial", source.Num(40), false, "40"},
		{"imperial text", source.Str("25 ft."), false, "25"},
		{"absent", source.Scalar{}, false, "0"},
		{"negative clamps", source.Num(-10), false, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SpeedExpr(tc.v, tc.metric); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestActivationType(t *testing.T) {
	cases := map[string]string{
		"":             "none",
		"action":       "action",
		"1 Action":     "action",
		"Bonus Action": "bonus",
		"réaction":     "reaction",
		"Legendary":    "legendary",
		"lair action":  "lair",
		"free":         "none",
	}
	for in, expected := range cases {
		if got := ActivationType(in); got != expected {
			t.Errorf("%q: expected %q, got %q", in, expected, got)
		}
	}
}

const monstersJSON = `[
  {
    "id": "8c1f2a",
    "slug": "goblin",
    "name": "Goblin",
    "image": "goblin.jpg",
    "token": "tokens/goblin",
    "attributes": {"measurement": "metric"},
    "data": {
      "abilities": {"str": 8, "dex": "14", "con": 10, "int": 10, "wis": 8, "cha": 8},
      "ac": "15 (leather armor, shield)",
      "hp": 7,
      "speed": {"walk": "9 m", "climb": 0},
      "cr": "1/4",
      "skills": {"stealth": 6, "perception": "-1", "juggling": 3},
      "senses": {"darkvision": 18},
      "size": "S",
      "conditionImmunities": "charmed; frightened",
      "traits": [{"name": "Nimble Escape", "text": "Disengage or Hide as a bonus action."}],
      "actions": {"name": "Scimitar", "text": "Melee Weapon Attack: +4 to hit.", "activation": "action"},
      "legendaryActions": [{"name": "Dash", "text": "Moves.", "cost": "2"}]
    }
  },
  {
    "id": 42,
    "name": "Ancient Wyrm",
    "data": {
      "abilities": {"str": 30},
      "cr": 24,
      "speed": {"speed": 40, "fly": 80},
      "damageImmunities": ["fire", " ", "poison"]
    }
  }
]`

func TestActorGoblin(t *testing.T) {
	m, _ := testMapper(t, map[string][]byte{
		"root/export/monsters.json":        []byte(monstersJSON),
		"root/export/monsters/goblin.webp": pngBytes(t, 1, 1),
		"root/export/tokens/goblin.png":    pngBytes(t, 1, 1),
	})
	monsters, err := source.Decode[source.Monster]([]byte(monstersJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	a := m.Actor(monsters[0])
	if a.Name != "Goblin" || a.Type != "npc" {
		t.Fatalf("unexpected identity %q/%q", a.Name, a.Type)
	}
	if a.Img != "/files/data/root/export/monsters/goblin.webp" {
		t.Fatalf("expected resolved monster image, got %q", a.Img)
	}
	if a.PrototypeToken.Texture.Src != "/files/data/root/export/tokens/goblin.png" {
		t.Fatalf("expected resolved token image, got %q", a.PrototypeToken.Texture.Src)
	}

	sys := a.System
	if sys.Abilities["dex"].Value != 14 || sys.Abilities["str"].Value != 8 {
		t.Fatalf("unexpected abilities %+v", sys.Abilities)
	}
	if sys.Attributes.AC.Value != 15 || sys.Attributes.HP.Max != 7 {
		t.Fatalf("unexpected ac/hp %+v %+v", sys.Attributes.AC, sys.Attributes.HP)
	}
	if sys.Attributes.Movement.Walk != "30" || sys.Attributes.Movement.Climb != "0" {
		t.Fatalf("expected metric speeds in feet, got %+v", sys.Attributes.Movement)
	}
	if sys.Attributes.Senses["darkvision"] != 60 {
		t.Fatalf("expected darkvision 60, got %d", sys.Attributes.Senses["darkvision"])
	}
	if sys.Details.CR != 0.25 {
		t.Fatalf("expected cr 0.25, got %v", sys.Details.CR)
	}
	if sys.Traits.Size != "sm" {
		t.Fatalf("expected size sm, got %q", sys.Traits.Size)
	}
	if !slices.Equal(sys.Traits.CI.Value, []string{"charmed", "frightened"}) {
		t.Fatalf("unexpected condition immunities %v", sys.Traits.CI.Value)
	}
	if sys.Traits.DI.Value == nil || len(sys.Traits.DI.Value) != 0 {
		t.Fatalf("expected empty damage immunities, got %#v", sys.Traits.DI.Value)
	}

	if got := sys.Skills["ste"]; got != (target.Skill{Value: 2, Bonus: 0}) {
		t.Fatalf("expected stealth expertise, got %+v", got)
	}
	if got := sys.Skills["prc"]; got != (target.Skill{Value: 0, Bonus: 0}) {
		t.Fatalf("expected untrained perception, got %+v", got)
	}
	if len(sys.Skills) != 2 {
		t.Fatalf("expected unknown skills dropped, got %v", sys.Skills)
	}

	if len(a.Items) != 3 {
		t.Fatalf("expected 3 feats, got %d", len(a.Items))
	}
	expected := []struct {
		name       string
		activation string
		cost       int
	}{
		{"Nimble Escape", "none", 0},
		{"Scimitar", "action", 1},
		{"Dash", "legendary", 2},
	}
	for i, e := range expected {
		f := a.Items[i]
		if f.Name != e.name || f.System.Activation.Type != e.activation || f.System.Activation.Cost != e.cost {
			t.Errorf("feat %d: expected %+v, got %s/%s/%d", i, e, f.Name, f.System.Activation.Type, f.System.Activation.Cost)
		}
		if f.Img == "" {
			t.Errorf("feat %d: expected an icon", i)
		}
	}

	ref := a.Flags.Importer
	if ref == nil || ref.Kind != "monster" || ref.ID != "8c1f2a" || ref.Slug != "goblin" {
		t.Fatalf("unexpected source ref %+v", ref)
	}
}

func TestActorFallbacks(t *testing.T) {
	m, _ := testMapper(t, map[string][]byte{"root/export/monsters.json": []byte(monstersJSON)})
	monsters, err := source.Decode[source.Monster]([]byte(monstersJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	a := m.Actor(monsters[1])
	if a.Img != "/icons/svg/mystery-man.svg" || a.PrototypeToken.Texture.Src != a.Img {
		t.Fatalf("expected placeholder images, got %q and %q", a.Img, a.PrototypeToken.Texture.Src)
	}
	if a.System.Abilities["dex"].Value != 10 {
		t.Fatalf("expected default ability 10, got %d", a.System.Abilities["dex"].Value)
	}
	if a.System.Attributes.AC.Value != 10 || a.System.Attributes.HP.Value != 1 {
		t.Fatalf("unexpected defaults %+v %+v", a.System.Attributes.AC, a.System.Attributes.HP)
	}
	if a.System.Attributes.Movement.Walk != "40" || a.System.Attributes.Movement.Fly != "80" {
		t.Fatalf("expected imperial speeds kept, got %+v", a.System.Attributes.Movement)
	}
	if a.System.Traits.Size != "med" {
		t.Fatalf("expected default size, got %q", a.System.Traits.Size)
	}
	if !slices.Equal(a.System.Traits.DI.Value, []string{"fire", "poison"}) {
		t.Fatalf("unexpected damage immunities %v", a.System.Traits.DI.Value)
	}
	if a.System.Skills != nil {
		t.Fatalf("expected no skills, got %v", a.System.Skills)
	}
	if a.Flags.Importer.ID != "42" {
		t.Fatalf("expected numeric id as text, got %q", a.Flags.Importer.ID)
	}

	ent, err := m.Map(context.Background(), monsters[1])
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if ent.Kind() != target.KindActor {
		t.Fatalf("expected actor, got %s", ent.Kind())
	}
}
