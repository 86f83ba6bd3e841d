// Package target defines the normalized content model handed to the entity store.
package target

import "encoding/json"

type Kind string

const (
	KindJournalEntry Kind = "JournalEntry"
	KindScene        Kind = "Scene"
	KindActor        Kind = "Actor"
	KindItem         Kind = "Item"
	KindRollTable    Kind = "RollTable"
)

var Kinds = []Kind{KindJournalEntry, KindScene, KindActor, KindItem, KindRollTable}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// SourceRef records where an entity came from so re-imports can be detected.
type SourceRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type Flags struct {
	Importer *SourceRef `json:"encounterport,omitempty"`
}

// Entity is one of JournalEntry, Scene, Actor, Item, or RollTable.
type Entity interface {
	Kind() Kind
	DisplayName() string
	Source() *SourceRef
	FolderID() string
	SetFolder(id string)
}

type JournalEntry struct {
	Name   string        `json:"name"`
	Folder string        `json:"folder,omitempty"`
	Pages  []JournalPage `json:"pages"`
	Flags  Flags         `json:"flags"`
}

type JournalPage struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Text PageText `json:"text"`
}

type PageText struct {
	Content string `json:"content"`
}

type Scene struct {
	Name       string   `json:"name"`
	Folder     string   `json:"folder,omitempty"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Background *Texture `json:"background,omitempty"`
	Tiles      []Tile   `json:"tiles"`
	Walls      []Wall   `json:"walls"`
	Grid       Grid     `json:"grid"`
	Flags      Flags    `json:"flags"`
}

type Texture struct {
	Src string `json:"src"`
}

type Tile struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Rotation float64 `json:"rotation"`
	Alpha    float64 `json:"alpha"`
	Hidden   bool    `json:"hidden"`
	Texture  Texture `json:"texture"`
}

type Wall struct {
	C     [4]int `json:"c"`
	Move  int    `json:"move"`
	Sight int    `json:"sight"`
	Sound int    `json:"sound"`
	Door  int    `json:"door"`
	DS    int    `json:"ds"`
	Dir   int    `json:"dir"`
}

const (
	GridSquare = 1
	GridHex    = 2
)

type Grid struct {
	Size     int     `json:"size"`
	Distance float64 `json:"distance"`
	Units    string  `json:"units"`
	Type     int     `json:"type"`
	Color    string  `json:"color"`
	Alpha    float64 `json:"alpha"`
	OffsetX  int     `json:"offsetX"`
	OffsetY  int     `json:"offsetY"`
}

type Actor struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Img            string         `json:"img"`
	Folder         string         `json:"folder,omitempty"`
	PrototypeToken PrototypeToken `json:"prototypeToken"`
	System         ActorSystem    `json:"system"`
	Items          []Feat         `json:"items"`
	Flags          Flags          `json:"flags"`
}

type PrototypeToken struct {
	Name      string  `json:"name"`
	Texture   Texture `json:"texture"`
	ActorLink bool    `json:"actorLink"`
}

type ActorSystem struct {
	Abilities  map[string]AbilityScore `json:"abilities"`
	Attributes ActorAttributes         `json:"attributes"`
	Details    ActorDetails            `json:"details"`
	Traits     ActorTraits             `json:"traits"`
	Skills     map[string]Skill        `json:"skills,omitempty"`
}

type AbilityScore struct {
	Value int `json:"value"`
}

type ActorAttributes struct {
	AC       Value          `json:"ac"`
	HP       HitPoints      `json:"hp"`
	Movement Movement       `json:"movement"`
	Senses   map[string]int `json:"senses"`
}

type Value struct {
	Value int `json:"value"`
}

type HitPoints struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

// Movement speeds are plain integer expressions such as "30".
type Movement struct {
	Walk   string `json:"walk"`
	Climb  string `json:"climb"`
	Fly    string `json:"fly"`
	Swim   string `json:"swim"`
	Burrow string `json:"burrow"`
}

type ActorDetails struct {
	CR        float64   `json:"cr"`
	Type      TextValue `json:"type"`
	Alignment string    `json:"alignment"`
	Biography TextValue `json:"biography"`
}

type TextValue struct {
	Value string `json:"value"`
}

type ActorTraits struct {
	Size      string   `json:"size"`
	Languages Custom   `json:"languages"`
	DI        TraitSet `json:"di"`
	DR        TraitSet `json:"dr"`
	DV        TraitSet `json:"dv"`
	CI        TraitSet `json:"ci"`
}

type Custom struct {
	Custom string `json:"custom"`
}

type TraitSet struct {
	Value  []string `json:"value"`
	Custom string   `json:"custom"`
}

// Skill is a proficiency multiplier (0, 1, or 2) plus a flat bonus.
type Skill struct {
	Value int `json:"value"`
	Bonus int `json:"bonus"`
}

// Feat is an ability embedded in an actor.
type Feat struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Img    string     `json:"img"`
	System FeatSystem `json:"system"`
	Flags  FeatFlags  `json:"flags"`
}

type FeatSystem struct {
	Description TextValue  `json:"description"`
	Activation  Activation `json:"activation"`
}

type Activation struct {
	Type string `json:"type"`
	Cost int    `json:"cost"`
}

type FeatFlags struct {
	Importer FeatTag `json:"encounterport"`
}

type FeatTag struct {
	Kind string `json:"kind"`
}

type Item struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Img    string     `json:"img"`
	Folder string     `json:"folder,omitempty"`
	System ItemSystem `json:"system"`
	Flags  Flags      `json:"flags"`
}

type ItemSystem struct {
	Description TextValue `json:"description"`
	Quantity    int       `json:"quantity"`
	Weight      float64   `json:"weight"`
	Price       Price     `json:"price"`
	Uses        Uses      `json:"uses"`
}

type Price struct {
	Value        float64 `json:"value"`
	Denomination string  `json:"denomination"`
}

type Uses struct {
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Per   string `json:"per"`
}

type RollTable struct {
	Name    string        `json:"name"`
	Folder  string        `json:"folder,omitempty"`
	Formula string        `json:"formula"`
	Results []TableResult `json:"results"`
	Flags   Flags         `json:"flags"`
}

type TableResult struct {
	Type   int    `json:"type"`
	Text   string `json:"text"`
	Range  [2]int `json:"range"`
	Weight int    `json:"weight"`
	Drawn  bool   `json:"drawn"`
}

func (*JournalEntry) Kind() Kind { return KindJournalEntry }
func (*Scene) Kind() Kind        { return KindScene }
func (*Actor) Kind() Kind        { return KindActor }
func (*Item) Kind() Kind         { return KindItem }
func (*RollTable) Kind() Kind    { return KindRollTable }

func (e *JournalEntry) DisplayName() string { return e.Name }
func (e *Scene) DisplayName() string        { return e.Name }
func (e *Actor) DisplayName() string        { return e.Name }
func (e *Item) DisplayName() string         { return e.Name }
func (e *RollTable) DisplayName() string    { return e.Name }

func (e *JournalEntry) Source() *SourceRef { return e.Flags.Importer }
func (e *Scene) Source() *SourceRef        { return e.Flags.Importer }
func (e *Actor) Source() *SourceRef        { return e.Flags.Importer }
func (e *Item) Source() *SourceRef         { return e.Flags.Importer }
func (e *RollTable) Source() *SourceRef    { return e.Flags.Importer }

func (e *JournalEntry) FolderID() string { return e.Folder }
func (e *Scene) FolderID() string        { return e.Folder }
func (e *Actor) FolderID() string        { return e.Folder }
func (e *Item) FolderID() string         { return e.Folder }
func (e *RollTable) FolderID() string    { return e.Folder }

func (e *JournalEntry) SetFolder(id string) { e.Folder = id }
func (e *Scene) SetFolder(id string)        { e.Folder = id }
func (e *Actor) SetFolder(id string)        { e.Folder = id }
func (e *Item) SetFolder(id string)         { e.Folder = id }
func (e *RollTable) SetFolder(id string)    { e.Folder = id }

// Decode rebuilds a typed entity from its stored JSON form.
func Decode(kind Kind, data []byte) (Entity, error) {
	var e Entity
	switch kind {
	case KindJournalEntry:
		e = &JournalEntry{}
	case KindScene:
		e = &Scene{}
	case KindActor:
		e = &Actor{}
	case KindItem:
		e = &Item{}
	case KindRollTable:
		e = &RollTable{}
	default:
		return nil, &UnknownKindError{Kind: string(kind)}
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return "unknown entity kind " + e.Kind
}
