package services

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	types "github.com/solforge-games/solforge-backend/internal/domain"
)

// ActionSpec maps one gameplay action to its target skill and base xp.
type ActionSpec struct {
	Skill  types.Skill `yaml:"skill" json:"skill"`
	BaseXP int64       `yaml:"base_xp" json:"baseXp"`
}

// ActionCatalog is loaded once at startup and never mutated afterwards,
// so concurrent readers need no synchronization.
type ActionCatalog map[string]ActionSpec

// defaultActionCatalog is the built-in action table; a YAML file named
// by XP_ACTION_CATALOG_PATH overrides it wholesale.
var defaultActionCatalog = ActionCatalog{
	"enemy_kill":      {Skill: types.SkillAttack, BaseXP: 40},
	"elite_kill":      {Skill: types.SkillAttack, BaseXP: 150},
	"boss_kill":       {Skill: types.SkillAttack, BaseXP: 500},
	"damage_dealt":    {Skill: types.SkillStrength, BaseXP: 2},
	"defend_block":    {Skill: types.SkillDefense, BaseXP: 20},
	"survive_wave":    {Skill: types.SkillVitality, BaseXP: 35},
	"cast_spell":      {Skill: types.SkillMagic, BaseXP: 25},
	"shoot_target":    {Skill: types.SkillProjectile, BaseXP: 25},
	"mine_ore":        {Skill: types.SkillMining, BaseXP: 35},
	"chop_tree":       {Skill: types.SkillWoodcutting, BaseXP: 30},
	"catch_fish":      {Skill: types.SkillFishing, BaseXP: 30},
	"forage_herb":     {Skill: types.SkillForaging, BaseXP: 25},
	"hunt_creature":   {Skill: types.SkillHunting, BaseXP: 45},
	"craft_common":    {Skill: types.SkillCrafting, BaseXP: 60},
	"craft_rare":      {Skill: types.SkillCrafting, BaseXP: 250},
	"smelt_bar":       {Skill: types.SkillSmithing, BaseXP: 40},
	"cook_meal":       {Skill: types.SkillCooking, BaseXP: 30},
	"brew_potion":     {Skill: types.SkillAlchemy, BaseXP: 55},
	"build_structure": {Skill: types.SkillConstruction, BaseXP: 80},
	"open_chest":      {Skill: types.SkillLuck, BaseXP: 50},
	"quest_complete":  {Skill: types.SkillLuck, BaseXP: 250},
}

// LoadActionCatalog returns the built-in catalog, or the YAML table at
// path when it is non-empty. Every entry is validated against the
// closed skill set before the catalog is accepted.
func LoadActionCatalog(path string) (ActionCatalog, error) {
	if path == "" {
		return defaultActionCatalog, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action catalog: %w", err)
	}
	var loaded map[string]ActionSpec
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse action catalog: %w", err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("action catalog %s is empty", path)
	}
	for key, spec := range loaded {
		if !types.ValidSkill(spec.Skill) {
			return nil, fmt.Errorf("action %q references unknown skill %q", key, spec.Skill)
		}
		if spec.BaseXP <= 0 {
			return nil, fmt.Errorf("action %q has non-positive base xp", key)
		}
	}
	return ActionCatalog(loaded), nil
}

// ActionInfo is one catalog row in the client-introspection listing.
type ActionInfo struct {
	ActionKey string      `json:"actionKey"`
	Skill     types.Skill `json:"skill"`
	BaseXP    int64       `json:"baseXp"`
}

func (c ActionCatalog) List() []ActionInfo {
	out := make([]ActionInfo, 0, len(c))
	for key, spec := range c {
		out = append(out, ActionInfo{ActionKey: key, Skill: spec.Skill, BaseXP: spec.BaseXP})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActionKey < out[j].ActionKey })
	return out
}
