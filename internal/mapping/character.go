package mapping

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"encounterport/internal/assets"
	"encounterport/internal/source"
	"encounterport/internal/target"
)

const (
	placeholderActor = "icons/svg/mystery-man.svg"

	// skills within this distance of a proficiency multiple are treated as that multiple
	skillTolerance = 0.75
)

var abilityKeys = []string{"str", "dex", "con", "int", "wis", "cha"}

var skillAbbreviations = map[string]string{
	"acrobatics":     "acr",
	"animalHandling": "ani",
	"arcana":         "arc",
	"athletics":      "ath",
	"deception":      "dec",
	"history":        "his",
	"insight":        "ins",
	"intimidation":   "itm",
	"investigation":  "inv",
	"medicine":       "med",
	"nature":         "nat",
	"perception":     "prc",
	"performance":    "prf",
	"persuasion":     "per",
	"religion":       "rel",
	"sleightOfHand":  "slt",
	"stealth":        "ste",
	"survival":       "sur",
}

var skillAbilities = map[string]string{
	"acr": "dex",
	"ani": "wis",
	"arc": "int",
	"ath": "str",
	"dec": "cha",
	"his": "int",
	"ins": "wis",
	"itm": "cha",
	"inv": "int",
	"med": "wis",
	"nat": "int",
	"prc": "wis",
	"prf": "cha",
	"per": "cha",
	"rel": "int",
	"slt": "dex",
	"ste": "dex",
	"sur": "wis",
}

var sizes = map[string]string{
	"T": "tiny",
	"S": "sm",
	"M": "med",
	"L": "lg",
	"H": "huge",
	"G": "grg",
}

var activationRules = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`(?:^|\b)(?:bonus|action bonus|bonus action)`), "bonus"},
	{regexp.MustCompile(`(?:^|\b)(?:reaction|réaction)`), "reaction"},
	{regexp.MustCompile(`(?:^|\b)(?:legendary|légendaire)`), "legendary"},
	{regexp.MustCompile(`(?:^|\b)(?:lair|repaire)`), "lair"},
	{regexp.MustCompile(`(?:^|\b)(?:action|attaque)`), "action"},
}

// ChallengeRating parses decimal or a/b fraction ratings. Unparseable input is 0.
func ChallengeRating(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		a, okA := parseLeadingFloat(parts[0])
		b, okB := parseLeadingFloat(parts[1])
		if okA && okB && b != 0 {
			return a / b
		}
	}
	if n, ok := parseLeadingFloat(s); ok {
		return n
	}
	return 0
}

// ProficiencyBonus follows the step table: 2 below CR 5, rising by one every four CR up to 9.
func ProficiencyBonus(cr float64) int {
	switch {
	case cr >= 29:
		return 9
	case cr >= 25:
		return 8
	case cr >= 21:
		return 7
	case cr >= 17:
		return 6
	case cr >= 13:
		return 5
	case cr >= 9:
		return 4
	case cr >= 5:
		return 3
	default:
		return 2
	}
}

func AbilityModifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// DecomposeSkill splits a recorded skill total into a proficiency multiplier and a
// residual bonus, so AbilityModifier(score) + Value*pb + Bonus == total. Multiples are
// tried in the order proficient, expertise, untrained; when none is within tolerance
// the skill is assumed proficient.
func DecomposeSkill(total, abilityScore, pb int) target.Skill {
	diff := float64(total - AbilityModifier(abilityScore))
	p := float64(pb)

	value := 1
	switch {
	case math.Abs(diff-p) <= skillTolerance:
		value = 1
	case math.Abs(diff-2*p) <= skillTolerance:
		value = 2
	case math.Abs(diff) <= skillTolerance:
		value = 0
	}
	return target.Skill{Value: value, Bonus: round(diff - float64(value)*p)}
}

func mapSkills(skills, abilities map[string]source.Scalar, cr float64) map[string]target.Skill {
	if len(skills) == 0 {
		return nil
	}
	pb := ProficiencyBonus(cr)
	out := make(map[string]target.Skill)
	for key, total := range skills {
		abbr, ok := skillAbbreviations[key]
		if !ok {
			continue
		}
		score := safeInt(abilities[skillAbilities[abbr]], 10)
		out[abbr] = DecomposeSkill(safeInt(total, 0), score, pb)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SpeedExpr converts a speed to a non-negative integer expression in feet.
func SpeedExpr(v source.Scalar, metric bool) string {
	n := safeFloat(v, 0)
	if metric {
		n = metersToFeet(n)
	}
	return strconv.Itoa(max(0, round(n)))
}

func mapSenses(senses map[string]source.Scalar, metric bool) map[string]int {
	out := make(map[string]int, len(senses))
	for k, v := range senses {
		n := safeFloat(v, 0)
		if metric {
			n = metersToFeet(n)
		}
		out[k] = round(n)
	}
	return out
}

// ActivationType infers an activation from free text, defaulting to none.
func ActivationType(text string) string {
	s := strings.ToLower(text)
	if s == "" {
		return "none"
	}
	for _, rule := range activationRules {
		if rule.re.MatchString(s) {
			return rule.kind
		}
	}
	return "none"
}

func sizeCode(raw string) string {
	if size, ok := sizes[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return size
	}
	return "med"
}

func traitValues(primary, secondary source.TraitList) []string {
	list := primary
	if list == nil {
		list = secondary
	}
	if list == nil {
		return []string{}
	}
	return []string(list)
}

func (m *Mapper) feat(name, text, activation string, cost int) target.Feat {
	return target.Feat{
		Name: name,
		Type: "feat",
		Img:  m.icons.Pick(name, text),
		System: target.FeatSystem{
			Description: target.TextValue{Value: text},
			Activation:  target.Activation{Type: activation, Cost: cost},
		},
		Flags: target.FeatFlags{Importer: target.FeatTag{Kind: "ability"}},
	}
}

// Actor maps a monster record to an npc actor with embedded ability feats.
func (m *Mapper) Actor(mon source.Monster) *target.Actor {
	d := mon.Data
	metric := mon.Metric()
	cr := ChallengeRating(d.CR.OrString("0"))
	name := mon.Name.OrString("NPC")

	abilities := make(map[string]target.AbilityScore, len(abilityKeys))
	for _, k := range abilityKeys {
		abilities[k] = target.AbilityScore{Value: safeInt(d.Abilities[k], 10)}
	}

	hp := safeInt(d.HP, 1)
	actor := &target.Actor{
		Name: name,
		Type: "npc",
		System: target.ActorSystem{
			Abilities: abilities,
			Attributes: target.ActorAttributes{
				AC: target.Value{Value: safeInt(d.AC, 10)},
				HP: target.HitPoints{Value: hp, Max: hp},
				Movement: target.Movement{
					Walk:   SpeedExpr(d.Speed.Walk.Or(d.Speed.Speed), metric),
					Climb:  SpeedExpr(d.Speed.Climb, metric),
					Fly:    SpeedExpr(d.Speed.Fly, metric),
					Swim:   SpeedExpr(d.Speed.Swim, metric),
					Burrow: SpeedExpr(d.Speed.Burrow, metric),
				},
				Senses: mapSenses(d.Senses, metric),
			},
			Details: target.ActorDetails{
				CR:        cr,
				Type:      target.TextValue{Value: d.Type.OrString("")},
				Alignment: d.Alignment.OrString(""),
				Biography: target.TextValue{Value: d.Description.OrString("")},
			},
			Traits: target.ActorTraits{
				Size:      sizeCode(d.Size.String()),
				Languages: target.Custom{Custom: d.Languages.OrString("")},
				DI:        target.TraitSet{Value: traitValues(d.DamageImmunities, d.Immunities)},
				DR:        target.TraitSet{Value: traitValues(d.DamageResistances, d.Resistances)},
				DV:        target.TraitSet{Value: traitValues(d.DamageVulnerabilities, d.Vulnerabilities)},
				CI:        target.TraitSet{Value: traitValues(d.ConditionImmunities, nil)},
			},
			Skills: mapSkills(d.Skills, d.Abilities, cr),
		},
		Items: []target.Feat{},
		Flags: target.Flags{Importer: sourceRef(mon.Ref())},
	}

	for _, a := range d.Traits.Items {
		actor.Items = append(actor.Items, m.feat(a.Name.OrString("Trait"), a.Text.OrString(""), "none", 0))
	}
	for _, a := range d.Actions.Items {
		activation := ActivationType(a.Activation.OrString("action"))
		actor.Items = append(actor.Items, m.feat(a.Name.OrString("Action"), a.Text.OrString(""), activation, 1))
	}
	for _, a := range d.Reactions.Items {
		actor.Items = append(actor.Items, m.feat(a.Name.OrString("Reaction"), a.Text.OrString(""), "reaction", 1))
	}
	for _, a := range d.LegendaryList() {
		actor.Items = append(actor.Items, m.feat(a.Name.OrString("Legendary"), a.Text.OrString(""), "legendary", safeInt(a.Cost, 1)))
	}

	tokenImg, _ := m.resolver.Resolve(mon.Token.String(), assets.KindMonsterToken, true)
	actorImg, _ := m.resolver.Resolve(mon.Image.String(), assets.KindMonsterImage, true)
	if actorImg == "" {
		actorImg = tokenImg
	}
	if tokenImg == "" {
		tokenImg = actorImg
	}
	if !assets.HasValidImageExtension(actorImg) {
		actorImg = placeholderActor
	}
	if !assets.HasValidImageExtension(tokenImg) {
		tokenImg = actorImg
	}
	actor.Img = m.url(actorImg)
	actor.PrototypeToken = target.PrototypeToken{
		Name:    name,
		Texture: target.Texture{Src: m.url(tokenImg)},
	}

	return actor
}
