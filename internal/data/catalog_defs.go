package data

import "time"

// Встроенный каталог арены. Используется, когда catalog_path в конфиге пуст.
// Ranges and radii are in world units, speeds in units per second.

var defaultSkills = []SkillDefinition{
	// --- Warrior ---
	{
		ID: 1, Name: "Slash", Behavior: "Strike",
		Range: 50, Cooldown: time.Second,
		DamageType: DamagePhysical, Targeting: TargetSingleTarget,
		IgnoreGlobalCooldown: true,
		Power:                20, Scaling: 1.0, CritChance: 10,
	},
	{
		ID: 2, Name: "Shield Bash", Behavior: "Strike",
		Range: 50, Cooldown: 8 * time.Second, ManaCost: 30,
		DamageType: DamagePhysical, Targeting: TargetSingleTarget,
		Weight: 2,
		Power:  40, Scaling: 0.5,
		Effects: []EffectDef{{Type: EffectStun, Duration: 2 * time.Second}},
	},
	{
		ID: 3, Name: "Hamstring", Behavior: "Strike",
		Range: 50, Cooldown: 6 * time.Second, ManaCost: 20,
		DamageType: DamagePhysical, Targeting: TargetSingleTarget,
		Weight: 1,
		Power:  15, Scaling: 0.3,
		Effects: []EffectDef{{Type: EffectSlow, Duration: 4 * time.Second, Magnitude: 0.4}},
	},
	{
		ID: 4, Name: "Whirlwind", Behavior: "Nova",
		Range: 50, Radius: 150, Cooldown: 10 * time.Second, ManaCost: 40,
		DamageType: DamagePhysical, Targeting: TargetAreaAtPoint, Hostility: HostileOpposingTeam,
		Power: 30, Scaling: 0.8, CritChance: 5,
	},

	// --- Mage ---
	{
		ID: 10, Name: "Arcane Bolt", Behavior: "Strike",
		Range: 500, Cooldown: 1500 * time.Millisecond,
		DamageType: DamageMagical, Targeting: TargetSingleTarget,
		IgnoreGlobalCooldown: true,
		Power:                15, Scaling: 0.6,
	},
	{
		ID: 11, Name: "Fireball", Behavior: "Strike",
		Range: 600, Cooldown: 4 * time.Second, CastTime: 1500 * time.Millisecond, ManaCost: 60,
		DamageType: DamageMagical, Targeting: TargetSingleTarget,
		Power: 80, Scaling: 1.2, CritChance: 15,
	},
	{
		ID: 12, Name: "Blizzard", Behavior: "Nova",
		Range: 600, Radius: 200, Cooldown: 12 * time.Second, CastTime: 2 * time.Second, ManaCost: 120,
		DamageType: DamageMagical, Targeting: TargetAreaAtPoint, Hostility: HostileOpposingTeam,
		Weight: 1,
		Power:  40, Scaling: 0.7,
		Effects: []EffectDef{{Type: EffectSlow, Duration: 3 * time.Second, Magnitude: 0.5}},
	},
	{
		ID: 13, Name: "Hush", Behavior: "Strike",
		Range: 500, Cooldown: 15 * time.Second, ManaCost: 50,
		DamageType: DamageMagical, Targeting: TargetSingleTarget,
		Weight:  3,
		Effects: []EffectDef{{Type: EffectSilence, Duration: 3 * time.Second}},
	},
	{
		ID: 14, Name: "Blink", Behavior: "Blink",
		Range: 400, Cooldown: 10 * time.Second, ManaCost: 40,
		DamageType: DamageTrue, Targeting: TargetGroundPoint,
		IgnoreGlobalCooldown: true,
	},

	// --- Cleric ---
	{
		ID: 20, Name: "Smite", Behavior: "Strike",
		Range: 400, Cooldown: 1500 * time.Millisecond,
		DamageType: DamageMagical, Targeting: TargetSingleTarget,
		IgnoreGlobalCooldown: true,
		Power:                10, Scaling: 0.5,
	},
	{
		ID: 21, Name: "Mend", Behavior: "Mend",
		Range: 500, Cooldown: 3 * time.Second, CastTime: time.Second, ManaCost: 50,
		DamageType: DamageMagical, Targeting: TargetSingleTarget, Hostility: HostileAllies,
		Power: 60, Scaling: 1.0,
	},
	{
		ID: 22, Name: "Sanctuary", Behavior: "Blessing",
		Range: 400, Radius: 250, Cooldown: 15 * time.Second, CastTime: time.Second, ManaCost: 100,
		DamageType: DamageMagical, Targeting: TargetAreaAtPoint, Hostility: HostileAllies,
		Power: 40, Scaling: 0.8,
	},
	{
		ID: 23, Name: "Exorcism", Behavior: "Nova",
		Range: 300, Radius: 200, Cooldown: 12 * time.Second, ManaCost: 80,
		DamageType: DamageTrue, Targeting: TargetAreaAtPoint, Hostility: HostileAnyMonster,
		Power: 50, Scaling: 0.6,
	},
	{
		ID: 24, Name: "Purify", Behavior: "Purify",
		Cooldown: 20 * time.Second, ManaCost: 40,
		DamageType: DamageTrue, Targeting: TargetSelfBuff,
	},

	// --- Monster ---
	{
		ID: 30, Name: "Claw", Behavior: "Strike",
		Range: 50, Cooldown: 2 * time.Second,
		DamageType: DamagePhysical, Targeting: TargetSingleTarget,
		IgnoreGlobalCooldown: true,
		Power:                10, Scaling: 1.0,
	},
	{
		ID: 31, Name: "Venom Spit", Behavior: "Strike",
		Range: 300, Cooldown: 8 * time.Second, ManaCost: 30,
		DamageType: DamagePhysical, Targeting: TargetSingleTarget,
		Weight: 1,
		Power:  20, Scaling: 0.5,
		Effects: []EffectDef{{Type: EffectPoison, Duration: 6 * time.Second, Magnitude: 15}},
	},
}

var defaultClasses = []ClassKit{
	{Name: "warrior", MaxHP: 1200, MaxMP: 300, Speed: 130, AttackPower: 60, BasicAttack: 1, Skills: []int32{2, 3, 4}},
	{Name: "mage", MaxHP: 800, MaxMP: 900, Speed: 120, AttackPower: 10, SpellPower: 90, BasicAttack: 10, Skills: []int32{11, 12, 13, 14}},
	{Name: "cleric", MaxHP: 950, MaxMP: 800, Speed: 125, AttackPower: 20, SpellPower: 70, BasicAttack: 20, Skills: []int32{21, 22, 23, 24}},
	{Name: "monster", MaxHP: 600, MaxMP: 200, Speed: 100, AttackPower: 40, SpellPower: 20, BasicAttack: 30, Skills: []int32{31}},
}
