// Package source decodes the JSON record files of an export tree.
package source

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Kind string

const (
	KindPage    Kind = "page"
	KindMap     Kind = "map"
	KindMonster Kind = "monster"
	KindItem    Kind = "item"
	KindTable   Kind = "table"
)

// Ref identifies a record in the export it came from.
type Ref struct {
	Kind Kind
	ID   string
	Slug string
}

// Record is one of Page, Map, Monster, Item, or Table.
type Record interface {
	Kind() Kind
	Ref() Ref
	DisplayName() string
}

type Meta struct {
	ID   Scalar `json:"id"`
	Slug Scalar `json:"slug"`
	Name Scalar `json:"name"`
}

func (m Meta) ref(kind Kind) Ref {
	return Ref{Kind: kind, ID: m.ID.String(), Slug: m.Slug.String()}
}

func (m Meta) DisplayName() string {
	if m.Name.IsSet() {
		return m.Name.String()
	}
	return "(unnamed)"
}

type Page struct {
	Meta
	Content Scalar `json:"content"`
}

func (Page) Kind() Kind { return KindPage }
func (p Page) Ref() Ref { return p.ref(KindPage) }

type Map struct {
	Meta
	Image        Scalar          `json:"image"`
	Floor        Scalar          `json:"floor"`
	Width        Scalar          `json:"width"`
	Height       Scalar          `json:"height"`
	GridSize     Scalar          `json:"gridSize"`
	GridUnits    Scalar          `json:"gridUnits"`
	GridScale    Scalar          `json:"gridScale"`
	GridType     Scalar          `json:"gridType"`
	GridColor    Scalar          `json:"gridColor"`
	GridOpacity  Scalar          `json:"gridOpacity"`
	GridOffsetX  Scalar          `json:"gridOffsetX"`
	GridOffsetY  Scalar          `json:"gridOffsetY"`
	Tiles        List[Tile]      `json:"tiles"`
	Walls        OneOrMany[Wall] `json:"walls"`
	Lines        OneOrMany[Wall] `json:"lines"`
	WallSegments OneOrMany[Wall] `json:"wallSegments"`
}

func (Map) Kind() Kind { return KindMap }
func (m Map) Ref() Ref { return m.ref(KindMap) }

// WallList returns the first present wall collection.
func (m Map) WallList() []Wall {
	switch {
	case m.Walls.Set:
		return m.Walls.Items
	case m.Lines.Set:
		return m.Lines.Items
	default:
		return m.WallSegments.Items
	}
}

type Tile struct {
	Asset struct {
		Resource Scalar `json:"resource"`
	} `json:"asset"`
	X        Scalar `json:"x"`
	Y        Scalar `json:"y"`
	Width    Scalar `json:"width"`
	Height   Scalar `json:"height"`
	Scale    Scalar `json:"scale"`
	Rotation Scalar `json:"rotation"`
	Opacity  Scalar `json:"opacity"`
	Hidden   Scalar `json:"hidden"`
}

// Wall carries every coordinate spelling seen in exports. C, when present, wins.
type Wall struct {
	C        List[Scalar] `json:"c"`
	X        Scalar       `json:"x"`
	X1       Scalar       `json:"x1"`
	Y        Scalar       `json:"y"`
	Y1       Scalar       `json:"y1"`
	X2       Scalar       `json:"x2"`
	XEnd     Scalar       `json:"xEnd"`
	Y2       Scalar       `json:"y2"`
	YEnd     Scalar       `json:"yEnd"`
	Move     Scalar       `json:"move"`
	Movement Scalar       `json:"movement"`
	Sight    Scalar       `json:"sight"`
	Vision   Scalar       `json:"vision"`
	Sound    Scalar       `json:"sound"`
	Door     Scalar       `json:"door"`
	DS       Scalar       `json:"ds"`
	Dir      Scalar       `json:"dir"`
}

type Monster struct {
	Meta
	Image      Scalar `json:"image"`
	Token      Scalar `json:"token"`
	Attributes struct {
		Measurement Scalar `json:"measurement"`
	} `json:"attributes"`
	Data MonsterData `json:"data"`
}

func (Monster) Kind() Kind { return KindMonster }
func (m Monster) Ref() Ref { return m.ref(KindMonster) }

// Metric reports whether speeds and senses are recorded in meters.
func (m Monster) Metric() bool {
	return strings.EqualFold(m.Attributes.Measurement.String(), "metric")
}

type MonsterData struct {
	Abilities             ScalarMap          `json:"abilities"`
	AC                    Scalar             `json:"ac"`
	HP                    Scalar             `json:"hp"`
	Speed                 Speed              `json:"speed"`
	CR                    Scalar             `json:"cr"`
	Skills                ScalarMap          `json:"skills"`
	Senses                ScalarMap          `json:"senses"`
	Traits                OneOrMany[Ability] `json:"traits"`
	Actions               OneOrMany[Ability] `json:"actions"`
	Reactions             OneOrMany[Ability] `json:"reactions"`
	Legendary             OneOrMany[Ability] `json:"legendary"`
	LegendaryActions      OneOrMany[Ability] `json:"legendaryActions"`
	Size                  Scalar             `json:"size"`
	Type                  Scalar             `json:"type"`
	Alignment             Scalar             `json:"alignment"`
	Description           Scalar             `json:"description"`
	Languages             Scalar             `json:"languages"`
	DamageImmunities      TraitList          `json:"damageImmunities"`
	Immunities            TraitList          `json:"immunities"`
	DamageResistances     TraitList          `json:"damageResistances"`
	Resistances           TraitList          `json:"resistances"`
	DamageVulnerabilities TraitList          `json:"damageVulnerabilities"`
	Vulnerabilities       TraitList          `json:"vulnerabilities"`
	ConditionImmunities   TraitList          `json:"conditionImmunities"`
}

// LegendaryList returns legendary, falling back to legendaryActions when absent.
func (d MonsterData) LegendaryList() []Ability {
	if d.Legendary.Set {
		return d.Legendary.Items
	}
	return d.LegendaryActions.Items
}

// Speed is an object of movement modes, or a bare value taken as walking speed.
type Speed struct {
	Walk   Scalar `json:"walk"`
	Speed  Scalar `json:"speed"`
	Climb  Scalar `json:"climb"`
	Fly    Scalar `json:"fly"`
	Swim   Scalar `json:"swim"`
	Burrow Scalar `json:"burrow"`
}

func (s *Speed) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain Speed
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*s = Speed(p)
		return nil
	}
	var walk Scalar
	if err := json.Unmarshal(data, &walk); err != nil {
		return err
	}
	if walk.kind == scalarComposite {
		walk = Scalar{}
	}
	*s = Speed{Walk: walk}
	return nil
}

type Ability struct {
	Name       Scalar `json:"name"`
	Text       Scalar `json:"text"`
	Activation Scalar `json:"activation"`
	Cost       Scalar `json:"cost"`
}

type Item struct {
	Meta
	Image       Scalar `json:"image"`
	Quantity    Scalar `json:"quantity"`
	Qty         Scalar `json:"qty"`
	Count       Scalar `json:"count"`
	Weight      Scalar `json:"weight"`
	Mass        Scalar `json:"mass"`
	Charges     Scalar `json:"charges"`
	Uses        *Uses  `json:"uses"`
	Value       Scalar `json:"value"`
	Price       Scalar `json:"price"`
	Cost        Scalar `json:"cost"`
	Descr       Scalar `json:"descr"`
	Description Scalar `json:"description"`
}

func (Item) Kind() Kind { return KindItem }
func (i Item) Ref() Ref { return i.ref(KindItem) }

// Uses is an object with max and value, or a bare value taken as max.
type Uses struct {
	Max   Scalar `json:"max"`
	Value Scalar `json:"value"`
}

func (u *Uses) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		type plain Uses
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*u = Uses(p)
		return nil
	}
	var bare Scalar
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	if bare.kind == scalarComposite {
		bare = Scalar{}
	}
	*u = Uses{Max: bare}
	return nil
}

type Table struct {
	Meta
	Rows  List[Row]  `json:"rows"`
	Rolls List[Roll] `json:"rolls"`
}

func (Table) Kind() Kind { return KindTable }
func (t Table) Ref() Ref { return t.ref(KindTable) }

type Roll struct {
	Formula Scalar `json:"formula"`
}

// Row is an object with named fields, a positional array, or a bare result text.
type Row struct {
	Range  List[Scalar] `json:"range"`
	Min    Scalar       `json:"min"`
	Max    Scalar       `json:"max"`
	From   Scalar       `json:"from"`
	To     Scalar       `json:"to"`
	Text   Scalar       `json:"text"`
	Result Scalar       `json:"result"`
	Weight Scalar       `json:"weight"`

	// Cells holds the positional form.
	Cells []Scalar `json:"-"`
}

func (r *Row) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var cells []Scalar
		if err := json.Unmarshal(data, &cells); err != nil {
			return err
		}
		*r = Row{Cells: cells}
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var text Scalar
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*r = Row{Text: text}
		return nil
	}
	type plain Row
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Row(p)
	return nil
}

// Cell returns the positional value at i, absent when out of range.
func (r Row) Cell(i int) Scalar {
	if i < 0 || i >= len(r.Cells) {
		return Scalar{}
	}
	return r.Cells[i]
}

// RangeAt returns the range bound at i, absent when out of range.
func (r Row) RangeAt(i int) Scalar {
	if i < 0 || i >= len(r.Range) {
		return Scalar{}
	}
	return r.Range[i]
}
