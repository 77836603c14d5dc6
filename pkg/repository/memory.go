package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu         sync.RWMutex
	complaints []*model.Complaint
}

// NewMemory creates a new memory repository, optionally seeded with complaints
func NewMemory(seed ...*model.Complaint) interfaces.Repository {
	m := &Memory{
		complaints: make([]*model.Complaint, 0, len(seed)),
	}
	for _, c := range seed {
		m.complaints = append(m.complaints, c.Clone())
	}
	return m
}

// AppendComplaint appends a complaint to memory
func (m *Memory) AppendComplaint(ctx context.Context, complaint *model.Complaint) error {
	if complaint == nil {
		return goerr.New("complaint is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Deep copy to prevent external modifications
	m.complaints = append(m.complaints, complaint.Clone())
	return nil
}

// ListComplaints returns copies of all complaints in insertion order
func (m *Memory) ListComplaints(ctx context.Context) ([]*model.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Complaint, 0, len(m.complaints))
	for _, c := range m.complaints {
		result = append(result, c.Clone())
	}
	return result, nil
}

// Close closes the repository (no-op for memory)
func (m *Memory) Close() error {
	return nil
}
