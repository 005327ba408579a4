package domain

// Skill is one of the seventeen fixed progression tracks attached to a
// character. The set is closed; award paths reject anything else.
type Skill string

const (
	SkillAttack     Skill = "attack"
	SkillStrength   Skill = "strength"
	SkillDefense    Skill = "defense"
	SkillVitality   Skill = "vitality"
	SkillMagic      Skill = "magic"
	SkillProjectile Skill = "projectile"

	SkillMining      Skill = "mining"
	SkillWoodcutting Skill = "woodcutting"
	SkillFishing     Skill = "fishing"
	SkillForaging    Skill = "foraging"
	SkillHunting     Skill = "hunting"

	SkillCrafting     Skill = "crafting"
	SkillSmithing     Skill = "smithing"
	SkillCooking      Skill = "cooking"
	SkillAlchemy      Skill = "alchemy"
	SkillConstruction Skill = "construction"

	SkillLuck Skill = "luck"
)

// AllSkills lists the closed skill set in display order.
var AllSkills = []Skill{
	SkillAttack, SkillStrength, SkillDefense, SkillVitality, SkillMagic, SkillProjectile,
	SkillMining, SkillWoodcutting, SkillFishing, SkillForaging, SkillHunting,
	SkillCrafting, SkillSmithing, SkillCooking, SkillAlchemy, SkillConstruction,
	SkillLuck,
}

var skillSet = func() map[Skill]struct{} {
	m := make(map[Skill]struct{}, len(AllSkills))
	for _, s := range AllSkills {
		m[s] = struct{}{}
	}
	return m
}()

func ValidSkill(s Skill) bool {
	_, ok := skillSet[s]
	return ok
}

func (s Skill) String() string { return string(s) }
