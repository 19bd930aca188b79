package tracker

import (
	"context"

	"github.com/google/uuid"

	"github.com/daystack/daystack/internal/models"
)

// Notes lists the owner's notes, most recently updated first.
func (s *Service) Notes(ctx context.Context, owner string) ([]models.Note, error) {
	return s.store.ListNotes(ctx, owner)
}

// SaveNote creates or updates a note.
func (s *Service) SaveNote(ctx context.Context, owner string, n models.Note) (*models.Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := s.now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if err := s.store.PutNote(ctx, owner, n); err != nil {
		return nil, err
	}
	s.publish("updated", "note", n.ID)
	return &n, nil
}

// DeleteNote removes one note.
func (s *Service) DeleteNote(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteNote(ctx, owner, id); err != nil {
		return err
	}
	s.publish("deleted", "note", id)
	return nil
}

// Ideas lists the owner's ideas, most recently updated first.
func (s *Service) Ideas(ctx context.Context, owner string) ([]models.Idea, error) {
	return s.store.ListIdeas(ctx, owner)
}

// SaveIdea creates or updates an idea.
func (s *Service) SaveIdea(ctx context.Context, owner string, i models.Idea) (*models.Idea, error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	now := s.now()
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now
	if err := s.store.PutIdea(ctx, owner, i); err != nil {
		return nil, err
	}
	s.publish("updated", "idea", i.ID)
	return &i, nil
}

// DeleteIdea removes one idea.
func (s *Service) DeleteIdea(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteIdea(ctx, owner, id); err != nil {
		return err
	}
	s.publish("deleted", "idea", id)
	return nil
}
