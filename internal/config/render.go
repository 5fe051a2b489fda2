package config

import "github.com/gitfold/gitfold/internal/status"

// sectionCategories maps config section names to the categories they
// cover. "unpulled"/"unmerged" hide both the push-remote and upstream
// variants.
var sectionCategories = map[string][]status.Category{
	"untracked": {status.CatUntracked},
	"unstaged":  {status.CatUnstaged},
	"staged":    {status.CatStaged},
	"stashes":   {status.CatStashes},
	"unpulled":  {status.CatUnpulledPush, status.CatUnpulledUpstream},
	"unmerged":  {status.CatUnmergedPush, status.CatUnmergedUpstream},
	"recent":    {status.CatRecent},
}

// RenderConfig translates the user configuration into the builder's
// render settings. Unknown section names are ignored.
func (c *Config) RenderConfig() status.RenderConfig {
	rc := status.RenderConfig{
		Hidden:        map[status.Category]bool{},
		DefaultFolded: map[status.Category]bool{},
		FoldHunks:     c.FoldHunks,
	}
	for _, name := range c.HiddenSections {
		for _, cat := range sectionCategories[name] {
			rc.Hidden[cat] = true
		}
	}
	for _, name := range c.FoldedSections {
		for _, cat := range sectionCategories[name] {
			rc.DefaultFolded[cat] = true
		}
	}
	return rc
}
