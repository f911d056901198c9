package catalog

import "fmt"

// UnknownIDError reports a format/engine/skin id absent from the catalog.
type UnknownIDError struct {
	Kind string // "format", "engine", "skin"
	ID   string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown %s id %q", e.Kind, e.ID)
}

// IncompatibleFormatEngineError reports an engine not declared compatible
// with the requested format.
type IncompatibleFormatEngineError struct {
	Format FormatID
	Engine EngineID
}

func (e *IncompatibleFormatEngineError) Error() string {
	return fmt.Sprintf("engine %s is not compatible with format %s", e.Engine, e.Format)
}

// IncompatibleEngineSkinError reports a skin not declared compatible with the
// requested engine.
type IncompatibleEngineSkinError struct {
	Engine EngineID
	Skin   SkinID
}

func (e *IncompatibleEngineSkinError) Error() string {
	return fmt.Sprintf("skin %s is not compatible with engine %s", e.Skin, e.Engine)
}

// Validate checks that the (format, engine) pair and the (engine, skin) pair
// are both declared compatible. Pure and deterministic; must pass before any
// content transformation or session creation.
func (c *Catalog) Validate(formatID FormatID, engineID EngineID, skinID SkinID) error {
	format, ok := c.formats[formatID]
	if !ok {
		return &UnknownIDError{Kind: "format", ID: string(formatID)}
	}
	engine, ok := c.engines[engineID]
	if !ok {
		return &UnknownIDError{Kind: "engine", ID: string(engineID)}
	}
	if _, ok := c.skins[skinID]; !ok {
		return &UnknownIDError{Kind: "skin", ID: string(skinID)}
	}

	if _, ok := format.CompatibleEngines[engineID]; !ok {
		return &IncompatibleFormatEngineError{Format: formatID, Engine: engineID}
	}
	if _, ok := engine.CompatibleSkins[skinID]; !ok {
		return &IncompatibleEngineSkinError{Engine: engineID, Skin: skinID}
	}
	return nil
}
