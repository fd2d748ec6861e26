package engine

// EffortUnitsPerLevel is how much cumulative effort one level costs.
const EffortUnitsPerLevel = 10

// LevelForEffort is the level implied by a cumulative effort total.
func LevelForEffort(total int) int {
	if total < 0 {
		total = 0
	}
	return total/EffortUnitsPerLevel + 1
}

// NextLevel never lets the level drop below current.
func NextLevel(current, total int) int {
	computed := LevelForEffort(total)
	if current > computed {
		return current
	}
	return computed
}

// EffortRequiredForLevel is the cumulative effort at which level is reached.
func EffortRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * EffortUnitsPerLevel
}
