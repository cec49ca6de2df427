package domain

// Rank is a named promotion tier with the point threshold that unlocks it.
type Rank struct {
	Name      string
	Threshold int
	Rewards   []RewardItem
}

// RewardItem is cosmetic reward metadata carried alongside a rank
// definition. The service records it but never grants items itself.
type RewardItem struct {
	Item         string
	Amount       int
	Enchantments []Enchantment
}

// Enchantment annotates a reward item.
type Enchantment struct {
	ID    string
	Level int
}

// RankProgress describes where a point total sits within the rank table.
type RankProgress struct {
	Current   *Rank
	Next      *Rank
	Remaining int
}
