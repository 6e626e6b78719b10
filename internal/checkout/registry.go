package checkout

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printyshop/printy/internal/models"
)

// Registry holds live checkout sessions. Sessions are ephemeral: dropped when
// the workflow completes or the user abandons it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

func (r *Registry) Create(product *models.Product, userID *uuid.UUID) (*Session, error) {
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product is not available", ErrValidation)
	}
	sel, err := NewSelection(product)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Product:   product,
		Selection: sel,
		State:     StateCustomizing,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess, nil
}

func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, nil
}

func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Release drops the session once its workflow can no longer progress, so
// completed checkouts do not accumulate for the life of the process. A
// non-terminal session is left in place.
func (r *Registry) Release(sess *Session) {
	if sess.Snapshot().State.Terminal() {
		r.Delete(sess.ID)
	}
}
