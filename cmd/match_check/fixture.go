package main

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/repository"
)

//go:embed fixture.json
var defaultFixture []byte

// fixture es el formato del archivo de escenarios: los datos de cada
// postulacion llegan crudos, como los manda el form builder.
type fixture struct {
	Pipeline    domain.MatchCriteriaSet     `json:"pipeline"`
	Forms       []domain.Form               `json:"forms"`
	Submissions []rawSubmission             `json:"submissions"`
	Profiles    []domain.PersonalityProfile `json:"profiles"`
}

type rawSubmission struct {
	ID     string         `json:"id"`
	FormID string         `json:"form_id"`
	Data   map[string]any `json:"data"`
}

// loadFixture valida cada postulacion contra su formulario y carga todo en un MemoryStore.
func loadFixture(raw []byte) (*repository.MemoryStore, fixture, error) {
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, fixture{}, fmt.Errorf("parse fixture: %w", err)
	}

	store := repository.NewMemoryStore()
	forms := make(map[string]domain.Form, len(fx.Forms))
	for _, f := range fx.Forms {
		forms[f.ID] = f
		store.PutForm(f)
	}
	store.PutCriteria(fx.Pipeline)

	for _, rs := range fx.Submissions {
		form, ok := forms[rs.FormID]
		if !ok {
			return nil, fixture{}, fmt.Errorf("submission %s: unknown form %s", rs.ID, rs.FormID)
		}
		data, err := domain.DecodeSubmissionData(form, rs.Data)
		if err != nil {
			return nil, fixture{}, fmt.Errorf("submission %s: %w", rs.ID, err)
		}
		store.PutSubmission(domain.Submission{
			ID:         rs.ID,
			FormID:     rs.FormID,
			EntityKind: form.EntityKind,
			Data:       data,
			Status:     domain.SubmissionStatusNew,
		})
	}
	for _, p := range fx.Profiles {
		store.PutProfile(p)
	}
	return store, fx, nil
}
