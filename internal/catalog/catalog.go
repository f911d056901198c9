package catalog

// FormatID identifies a game shell (overall ruleset and pacing).
type FormatID string

// EngineID identifies an interaction mechanic (how students answer).
type EngineID string

// SkinID identifies a visual/narrative theme.
type SkinID string

// The six core pedagogical engines.
const (
	EngineCounter      EngineID = "ENG01" // counter / number line
	EngineDragDrop     EngineID = "ENG02" // drag-drop numbers
	EngineTextRecog    EngineID = "ENG05" // text recognition
	EngineLetterSound  EngineID = "ENG06" // letter-sound matching
	EngineReadingFluen EngineID = "ENG07" // reading fluency
	EngineLifeCycle    EngineID = "ENG09" // life cycle sequencing
)

// Game formats.
const (
	FormatTriviaLightning FormatID = "trivia_lightning"
	FormatMemoryFlip      FormatID = "memory_flip"
	FormatDragDropSorting FormatID = "drag_drop_sorting"
	FormatNumberLineRace  FormatID = "number_line_race"
	FormatColorMatch      FormatID = "color_match"
	FormatPictureBingo    FormatID = "picture_bingo"
)

// Skin themes.
const (
	SkinFarm  SkinID = "farm"
	SkinSpace SkinID = "space"
	SkinOcean SkinID = "ocean"
)

// GameFormat is immutable reference data describing a game shell.
type GameFormat struct {
	ID                FormatID
	Name              string
	CompatibleEngines map[EngineID]struct{}
}

// Engine is immutable reference data describing an interaction mechanic.
type Engine struct {
	ID              EngineID
	Name            string
	CompatibleSkins map[SkinID]struct{}
	// ContentShape names the transformed-question payload the engine expects.
	ContentShape string
}

// SkinTheme is immutable reference data for a visual theme. Vocabulary maps
// generic placeholder tokens found in question text onto themed nouns.
type SkinTheme struct {
	ID         SkinID
	Name       string
	Vocabulary map[string]string
	IconSet    map[string]string
}

// Catalog holds the reference tables. Construct with Default(); treat as
// read-only afterwards.
type Catalog struct {
	formats map[FormatID]GameFormat
	engines map[EngineID]Engine
	skins   map[SkinID]SkinTheme
}

func engineSet(ids ...EngineID) map[EngineID]struct{} {
	s := make(map[EngineID]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func skinSet(ids ...SkinID) map[SkinID]struct{} {
	s := make(map[SkinID]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Default returns the built-in catalog. Adding an engine means adding it
// here and to the content transformer's mapping table; there is no runtime
// registration.
func Default() *Catalog {
	formats := []GameFormat{
		{
			ID:                FormatTriviaLightning,
			Name:              "Trivia Lightning",
			CompatibleEngines: engineSet(EngineCounter, EngineTextRecog, EngineReadingFluen),
		},
		{
			ID:                FormatMemoryFlip,
			Name:              "Memory Flip",
			CompatibleEngines: engineSet(EngineLetterSound, EngineTextRecog),
		},
		{
			ID:                FormatDragDropSorting,
			Name:              "Drag-Drop Sorting",
			CompatibleEngines: engineSet(EngineDragDrop, EngineLifeCycle),
		},
		{
			ID:                FormatNumberLineRace,
			Name:              "Number Line Race",
			CompatibleEngines: engineSet(EngineCounter, EngineDragDrop),
		},
		{
			ID:                FormatColorMatch,
			Name:              "Color Match",
			CompatibleEngines: engineSet(EngineTextRecog, EngineLetterSound),
		},
		{
			ID:                FormatPictureBingo,
			Name:              "Picture Bingo",
			CompatibleEngines: engineSet(EngineCounter, EngineLifeCycle),
		},
	}

	engines := []Engine{
		{
			ID:              EngineCounter,
			Name:            "Counter/Number Line",
			CompatibleSkins: skinSet(SkinFarm, SkinSpace, SkinOcean),
			ContentShape:    "counting",
		},
		{
			ID:              EngineDragDrop,
			Name:            "Drag-Drop Numbers",
			CompatibleSkins: skinSet(SkinFarm, SkinSpace),
			ContentShape:    "drag_drop",
		},
		{
			ID:              EngineTextRecog,
			Name:            "Text Recognition",
			CompatibleSkins: skinSet(SkinFarm, SkinOcean),
			ContentShape:    "text_choice",
		},
		{
			ID:              EngineLetterSound,
			Name:            "Letter-Sound Matching",
			CompatibleSkins: skinSet(SkinFarm, SkinOcean),
			ContentShape:    "pair_matching",
		},
		{
			ID:              EngineReadingFluen,
			Name:            "Reading Fluency",
			CompatibleSkins: skinSet(SkinSpace, SkinOcean),
			ContentShape:    "passage",
		},
		{
			ID:              EngineLifeCycle,
			Name:            "Life Cycle Sequencing",
			CompatibleSkins: skinSet(SkinFarm, SkinOcean),
			ContentShape:    "sequence",
		},
	}

	skins := []SkinTheme{
		{
			ID:   SkinFarm,
			Name: "Farm",
			Vocabulary: map[string]string{
				"item":   "chicks",
				"place":  "barnyard",
				"friend": "the farmer",
				"group":  "herd",
			},
			IconSet: map[string]string{
				"item":  "chick",
				"place": "barn",
			},
		},
		{
			ID:   SkinSpace,
			Name: "Space",
			Vocabulary: map[string]string{
				"item":   "rockets",
				"place":  "galaxy",
				"friend": "the astronaut",
				"group":  "fleet",
			},
			IconSet: map[string]string{
				"item":  "rocket",
				"place": "planet",
			},
		},
		{
			ID:   SkinOcean,
			Name: "Ocean",
			Vocabulary: map[string]string{
				"item":   "fish",
				"place":  "reef",
				"friend": "the diver",
				"group":  "school",
			},
			IconSet: map[string]string{
				"item":  "fish",
				"place": "coral",
			},
		},
	}

	c := &Catalog{
		formats: make(map[FormatID]GameFormat, len(formats)),
		engines: make(map[EngineID]Engine, len(engines)),
		skins:   make(map[SkinID]SkinTheme, len(skins)),
	}
	for _, f := range formats {
		c.formats[f.ID] = f
	}
	for _, e := range engines {
		c.engines[e.ID] = e
	}
	for _, s := range skins {
		c.skins[s.ID] = s
	}
	return c
}

// Format looks up a game format by id.
func (c *Catalog) Format(id FormatID) (GameFormat, bool) {
	f, ok := c.formats[id]
	return f, ok
}

// Engine looks up an engine by id.
func (c *Catalog) Engine(id EngineID) (Engine, bool) {
	e, ok := c.engines[id]
	return e, ok
}

// Skin looks up a skin theme by id.
func (c *Catalog) Skin(id SkinID) (SkinTheme, bool) {
	s, ok := c.skins[id]
	return s, ok
}

// Engines returns all engine ids in the catalog.
func (c *Catalog) Engines() []EngineID {
	ids := make([]EngineID, 0, len(c.engines))
	for id := range c.engines {
		ids = append(ids, id)
	}
	return ids
}
