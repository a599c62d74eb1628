package control

import "fmt"

// Order sorts loop configs so that every outer loop is evaluated before its
// inner children. The adjacency is rebuilt from ids on every call rather
// than holding live references between configs.
//
// Inner loops whose parent is missing, disabled, or not an outer loop are
// returned in the skipped list with a reason; the caller reports them and
// evaluates the rest.
func Order(configs []Config) (ordered []Config, skipped map[string]error) {
	skipped = make(map[string]error)

	byID := make(map[string]Config, len(configs))
	for _, cfg := range configs {
		byID[cfg.ID] = cfg
	}

	children := make(map[string][]Config)
	for _, cfg := range configs {
		if cfg.CascadeLevel != LevelInner {
			continue
		}
		parent, ok := byID[cfg.ParentID]
		if !ok {
			skipped[cfg.ID] = fmt.Errorf("pid cascade: loop %s: parent %s not found", cfg.ID, cfg.ParentID)
			continue
		}
		if parent.CascadeLevel != LevelOuter {
			skipped[cfg.ID] = fmt.Errorf("pid cascade: loop %s: parent %s is not an outer loop", cfg.ID, cfg.ParentID)
			continue
		}
		children[cfg.ParentID] = append(children[cfg.ParentID], cfg)
	}

	for _, cfg := range configs {
		if cfg.CascadeLevel == LevelInner {
			continue
		}
		ordered = append(ordered, cfg)
		for _, child := range children[cfg.ID] {
			ordered = append(ordered, child)
		}
	}
	return ordered, skipped
}
