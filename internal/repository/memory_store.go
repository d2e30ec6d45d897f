package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// MemoryStore implementa todos los repositorios en memoria. Lo usan el smoke
// check de cmd/match_check y los tests.
type MemoryStore struct {
	mu          sync.RWMutex
	forms       map[string]domain.Form
	submissions []domain.Submission
	criteria    map[string]domain.MatchCriteriaSet
	profiles    map[string]domain.PersonalityProfile
	matches     map[[2]string]domain.MatchResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forms:    make(map[string]domain.Form),
		criteria: make(map[string]domain.MatchCriteriaSet),
		profiles: make(map[string]domain.PersonalityProfile),
		matches:  make(map[[2]string]domain.MatchResult),
	}
}

func (m *MemoryStore) PutForm(f domain.Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[f.ID] = f
}

// PutSubmission toma el EntityKind del formulario si ya fue cargado.
func (m *MemoryStore) PutSubmission(s domain.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.forms[s.FormID]; ok && s.EntityKind == "" {
		s.EntityKind = f.EntityKind
	}
	for i := range m.submissions {
		if m.submissions[i].ID == s.ID {
			m.submissions[i] = s
			return
		}
	}
	m.submissions = append(m.submissions, s)
}

func (m *MemoryStore) PutCriteria(set domain.MatchCriteriaSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria[set.PipelineID] = set
}

func (m *MemoryStore) PutProfile(p domain.PersonalityProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.SubmissionID] = p
}

// Forms, Submissions, Criteria, Personality y Matches exponen cada contrato por separado.
func (m *MemoryStore) Forms() FormRepository             { return memoryForms{m} }
func (m *MemoryStore) Submissions() SubmissionRepository { return memorySubmissions{m} }
func (m *MemoryStore) Criteria() CriteriaRepository       { return memoryCriteria{m} }
func (m *MemoryStore) Personality() PersonalityRepository { return memoryPersonality{m} }
func (m *MemoryStore) Matches() MatchRepository           { return memoryMatches{m} }

type memoryForms struct{ m *MemoryStore }

func (r memoryForms) FindByID(ctx context.Context, id string) (domain.Form, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	f, ok := r.m.forms[id]
	if !ok {
		return domain.Form{}, fmt.Errorf("form %s: %w", id, domain.ErrNotFound)
	}
	return f, nil
}

type memorySubmissions struct{ m *MemoryStore }

func (r memorySubmissions) FindByForm(ctx context.Context, formID string) ([]domain.Submission, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []domain.Submission
	for _, s := range r.m.submissions {
		if s.FormID == formID && s.Status != domain.SubmissionStatusArchived {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memorySubmissions) FindByID(ctx context.Context, id string) (domain.Submission, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, s := range r.m.submissions {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Submission{}, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
}

type memoryCriteria struct{ m *MemoryStore }

func (r memoryCriteria) Get(ctx context.Context, pipelineID string) (domain.MatchCriteriaSet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	set, ok := r.m.criteria[pipelineID]
	if !ok {
		return domain.MatchCriteriaSet{}, fmt.Errorf("criteria for pipeline %s: %w", pipelineID, domain.ErrNotFound)
	}
	return set, nil
}

type memoryPersonality struct{ m *MemoryStore }

func (r memoryPersonality) FindBySubmission(ctx context.Context, submissionID string) (domain.PersonalityProfile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.profiles[submissionID]
	if !ok {
		return domain.PersonalityProfile{}, fmt.Errorf("personality profile %s: %w", submissionID, domain.ErrNotFound)
	}
	return p, nil
}

func (r memoryPersonality) FindBySubmissions(ctx context.Context, submissionIDs []string) (map[string]domain.PersonalityProfile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make(map[string]domain.PersonalityProfile, len(submissionIDs))
	for _, id := range submissionIDs {
		if p, ok := r.m.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type memoryMatches struct{ m *MemoryStore }

func (r memoryMatches) Upsert(ctx context.Context, result domain.MatchResult) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]string{result.SubjectSubmissionID, result.OppositeSubmissionID}
	if prev, ok := r.m.matches[key]; ok {
		result.CreatedAt = prev.CreatedAt
	}
	r.m.matches[key] = result
	return nil
}

func (r memoryMatches) ListBySubject(ctx context.Context, subjectSubmissionID string) ([]domain.MatchResult, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []domain.MatchResult
	for key, res := range r.m.matches {
		if key[0] == subjectSubmissionID {
			out = append(out, res)
		}
	}
	slices.SortFunc(out, func(a, b domain.MatchResult) int {
		if a.TotalScore != b.TotalScore {
			return cmp.Compare(b.TotalScore, a.TotalScore)
		}
		return cmp.Compare(a.OppositeSubmissionID, b.OppositeSubmissionID)
	})
	return out, nil
}

// MatchCount devuelve cuantos pares hay guardados.
func (m *MemoryStore) MatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}
