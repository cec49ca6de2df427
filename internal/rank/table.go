package rank

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/rank-service/internal/domain"
)

// Table holds the ordered rank definitions and answers point lookups. The
// rank list is replaced wholesale on reload and read concurrently.
type Table struct {
	path   string
	track  string
	logger *zap.Logger

	mu          sync.RWMutex
	ranks       []domain.Rank
	fingerprint string
	lastSynced  string
}

type rankFileEnchantment struct {
	ID    string `yaml:"id"`
	Level int    `yaml:"level"`
}

type rankFileReward struct {
	Item         string                `yaml:"item"`
	Amount       int                   `yaml:"amount"`
	Enchantments []rankFileEnchantment `yaml:"enchantments"`
}

type rankFileEntry struct {
	Name   string           `yaml:"name"`
	Points int              `yaml:"points"`
	Reward []rankFileReward `yaml:"reward"`
}

type rankFile struct {
	Ranks []rankFileEntry `yaml:"ranks"`
}

// NewTable loads the rank definitions from path. A parse or validation
// failure aborts initialization; an absent ranks section yields an empty
// table.
func NewTable(path, track string, logger *zap.Logger) (*Table, error) {
	t := &Table{path: path, track: track, logger: logger}
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load parses the definitions file, sorts ranks ascending by threshold and
// records the content fingerprint.
func (t *Table) Load() error {
	content, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read rank definitions: %w", err)
	}

	var file rankFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("parse rank definitions: %w", err)
	}

	ranks := make([]domain.Rank, 0, len(file.Ranks))
	for _, entry := range file.Ranks {
		if entry.Name == "" {
			return fmt.Errorf("rank definitions: rank without a name")
		}
		if entry.Points < 0 {
			return fmt.Errorf("rank definitions: rank %q has negative threshold %d", entry.Name, entry.Points)
		}
		rank := domain.Rank{Name: entry.Name, Threshold: entry.Points}
		for _, reward := range entry.Reward {
			item := domain.RewardItem{Item: reward.Item, Amount: reward.Amount}
			if item.Amount <= 0 {
				item.Amount = 1
			}
			for _, enchantment := range reward.Enchantments {
				item.Enchantments = append(item.Enchantments, domain.Enchantment{
					ID:    enchantment.ID,
					Level: enchantment.Level,
				})
			}
			rank.Rewards = append(rank.Rewards, item)
		}
		ranks = append(ranks, rank)
	}

	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Threshold < ranks[j].Threshold })

	seenNames := make(map[string]bool, len(ranks))
	for i, rank := range ranks {
		lower := strings.ToLower(rank.Name)
		if seenNames[lower] {
			return fmt.Errorf("rank definitions: duplicate rank name %q", rank.Name)
		}
		seenNames[lower] = true
		if i > 0 && ranks[i-1].Threshold == rank.Threshold {
			return fmt.Errorf("rank definitions: ranks %q and %q share threshold %d",
				ranks[i-1].Name, rank.Name, rank.Threshold)
		}
	}

	sum := sha256.Sum256(content)
	fingerprint := hex.EncodeToString(sum[:])

	t.mu.Lock()
	t.ranks = ranks
	t.fingerprint = fingerprint
	t.mu.Unlock()

	t.logger.Info("rank table loaded",
		zap.Int("ranks", len(ranks)),
		zap.String("fingerprint", fingerprint[:12]),
	)
	return nil
}

// RankForPoints returns the highest-threshold rank whose threshold is at
// most points, or false when points falls below every threshold.
func (t *Table) RankForPoints(points int) (domain.Rank, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result *domain.Rank
	for i := range t.ranks {
		if points >= t.ranks[i].Threshold {
			result = &t.ranks[i]
		} else {
			break
		}
	}
	if result == nil {
		return domain.Rank{}, false
	}
	return *result, true
}

// Progress reports the current and next rank for a point total plus the
// points remaining to the next tier (zero at the top tier).
func (t *Table) Progress(points int) domain.RankProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var progress domain.RankProgress
	for i := range t.ranks {
		if points >= t.ranks[i].Threshold {
			rank := t.ranks[i]
			progress.Current = &rank
		} else {
			rank := t.ranks[i]
			progress.Next = &rank
			break
		}
	}
	if progress.Next != nil {
		progress.Remaining = progress.Next.Threshold - points
	}
	return progress
}

// Index returns the ordinal of a rank by name, case-insensitive, or -1.
func (t *Table) Index(name string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.ranks {
		if strings.EqualFold(t.ranks[i].Name, name) {
			return i
		}
	}
	return -1
}

// NextAfter returns the rank immediately above the named one, if any.
func (t *Table) NextAfter(name string) (domain.Rank, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.ranks {
		if strings.EqualFold(t.ranks[i].Name, name) && i+1 < len(t.ranks) {
			return t.ranks[i+1], true
		}
	}
	return domain.Rank{}, false
}

// Ranks returns a copy of the ordered rank list.
func (t *Table) Ranks() []domain.Rank {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Rank, len(t.ranks))
	copy(out, t.ranks)
	return out
}

// Len returns the number of defined ranks.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ranks)
}

// Fingerprint returns the content hash of the loaded definitions.
func (t *Table) Fingerprint() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fingerprint
}

// IsRankGroup reports whether a group name belongs to the rank table.
func (t *Table) IsRankGroup(name string) bool {
	return t.Index(name) >= 0
}
