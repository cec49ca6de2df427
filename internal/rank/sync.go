package rank

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rank-service/internal/directory"
)

// SyncToDirectory propagates the rank table into the group directory with a
// create-only policy: missing groups are created once with their cosmetic
// attributes, existing groups are never modified so manual customizations
// survive reloads.
func (t *Table) SyncToDirectory(ctx context.Context, dir directory.GroupDirectory) error {
	t.mu.RLock()
	ranks := make([]string, len(t.ranks))
	for i := range t.ranks {
		ranks[i] = t.ranks[i].Name
	}
	fingerprint := t.fingerprint
	t.mu.RUnlock()

	created := 0
	for i, name := range ranks {
		exists, err := dir.GroupExists(ctx, name)
		if err != nil {
			return fmt.Errorf("sync rank %s: %w", name, err)
		}
		if exists {
			continue
		}

		group := directory.Group{
			Name:        name,
			Track:       t.track,
			Prefix:      groupPrefix(name),
			Weight:      i + 1,
			Fingerprint: fingerprint,
		}
		if err := dir.CreateGroup(ctx, group); err != nil {
			return fmt.Errorf("sync rank %s: %w", name, err)
		}
		created++
		t.logger.Info("created rank group", zap.String("group", name), zap.Int("weight", i+1))
	}

	t.mu.Lock()
	t.lastSynced = fingerprint
	t.mu.Unlock()

	t.logger.Info("rank groups synced", zap.Int("created", created), zap.Int("total", len(ranks)))
	return nil
}

// Reload re-reads the definitions file and re-syncs the directory only when
// the content fingerprint changed since the last sync.
func (t *Table) Reload(ctx context.Context, dir directory.GroupDirectory) error {
	if err := t.Load(); err != nil {
		return err
	}

	t.mu.RLock()
	changed := t.fingerprint != t.lastSynced
	t.mu.RUnlock()

	if !changed {
		t.logger.Info("ranks are up to date, no changes detected")
		return nil
	}
	return t.SyncToDirectory(ctx, dir)
}

func groupPrefix(name string) string {
	return "[" + strings.ToUpper(strings.ReplaceAll(name, "_", " ")) + "] "
}
