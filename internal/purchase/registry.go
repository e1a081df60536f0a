package purchase

import (
	"strings"
	"sync"
	"time"

	"codemarket/internal/wallet"

	"go.uber.org/zap"
)

type registryEntry struct {
	workflow *Workflow
	lastUsed time.Time
}

// Registry keeps one workflow per buyer address
type Registry struct {
	wallet   wallet.Collaborator
	recorder Recorder
	logger   *zap.Logger
	opts     []Option
	now      func() time.Time

	mu        sync.Mutex
	workflows map[string]*registryEntry
}

// NewRegistry creates a registry whose workflows share w and recorder
func NewRegistry(w wallet.Collaborator, recorder Recorder, logger *zap.Logger, opts ...Option) *Registry {
	return &Registry{
		wallet:    w,
		recorder:  recorder,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		workflows: make(map[string]*registryEntry),
	}
}

// For returns the workflow for buyer, creating it on first use
func (r *Registry) For(buyer string) *Workflow {
	key := strings.ToLower(buyer)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.workflows[key]
	if !ok {
		entry = &registryEntry{workflow: NewWorkflow(buyer, r.wallet, r.recorder, r.logger, r.opts...)}
		r.workflows[key] = entry
	}
	entry.lastUsed = r.now()
	return entry.workflow
}

// Snapshot reports the workflow state for buyer without creating a workflow
func (r *Registry) Snapshot(buyer string) Snapshot {
	r.mu.Lock()
	entry, ok := r.workflows[strings.ToLower(buyer)]
	r.mu.Unlock()

	if !ok {
		return Snapshot{State: StateIdle}
	}
	return entry.workflow.Snapshot()
}

// Len returns the number of tracked buyers
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workflows)
}

// Prune drops idle workflows not used for maxIdle and returns how many went.
// Workflows awaiting confirmation or processing are kept.
func (r *Registry) Prune(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for key, entry := range r.workflows {
		if entry.lastUsed.After(cutoff) || entry.workflow.Snapshot().State != StateIdle {
			continue
		}
		delete(r.workflows, key)
		pruned++
	}
	return pruned
}
