package catalog_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

type fakePersonalityRepo struct {
	items map[string]catalog.Personality
}

func (r *fakePersonalityRepo) Save(ctx context.Context, p *catalog.Personality) error {
	r.items[p.ID] = *p
	return nil
}

func (r *fakePersonalityRepo) FindByID(ctx context.Context, id string) (*catalog.Personality, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"personality not found", nil, platformerrors.CodeNotFound)
	}
	copied := p
	return &copied, nil
}

func (r *fakePersonalityRepo) List(ctx context.Context) ([]*catalog.Personality, error) { return nil, nil }
func (r *fakePersonalityRepo) Delete(ctx context.Context, id string) error              { return nil }

type fakeGuardrailRepo struct {
	items map[string]catalog.Guardrail
}

func (r *fakeGuardrailRepo) Save(ctx context.Context, g *catalog.Guardrail) error {
	r.items[g.ID] = *g
	return nil
}

func (r *fakeGuardrailRepo) FindByID(ctx context.Context, id string) (*catalog.Guardrail, error) {
	g, ok := r.items[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"guardrail not found", nil, platformerrors.CodeNotFound)
	}
	copied := g
	return &copied, nil
}

func (r *fakeGuardrailRepo) List(ctx context.Context) ([]*catalog.Guardrail, error) { return nil, nil }
func (r *fakeGuardrailRepo) Delete(ctx context.Context, id string) error            { return nil }

type fakeAnimalRepo struct {
	animals map[string]catalog.Animal
}

func (r *fakeAnimalRepo) Save(ctx context.Context, a *catalog.Animal) error {
	r.animals[a.ID] = *a
	return nil
}

func (r *fakeAnimalRepo) FindByID(ctx context.Context, id string) (*catalog.Animal, error) {
	a, ok := r.animals[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"animal not found", nil, platformerrors.CodeNotFound)
	}
	copied := a
	return &copied, nil
}

func newCatalogService() (catalog.Service, *fakeAnimalRepo) {
	animals := &fakeAnimalRepo{animals: make(map[string]catalog.Animal)}
	return catalog.NewService(
		&fakePersonalityRepo{items: make(map[string]catalog.Personality)},
		&fakeGuardrailRepo{items: make(map[string]catalog.Guardrail)},
		animals,
		zerolog.Nop(),
	), animals
}

func TestSavePersonalityValidation(t *testing.T) {
	service, _ := newCatalogService()

	tests := []struct {
		name        string
		personality catalog.Personality
		wantErr     bool
	}{
		{"valid", catalog.Personality{ID: "gentle-storyteller", Name: "Gentle Storyteller", Description: "Speaks softly."}, false},
		{"missing id", catalog.Personality{Name: "Gentle Storyteller", Description: "Speaks softly."}, true},
		{"missing name", catalog.Personality{ID: "gentle-storyteller", Description: "Speaks softly."}, true},
		{"missing description", catalog.Personality{ID: "gentle-storyteller", Name: "Gentle Storyteller"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SavePersonality(context.Background(), &tt.personality)
			if tt.wantErr && !platformerrors.IsCode(err, platformerrors.CodeInvalidRequest) {
				t.Errorf("err = %v, want %s", err, platformerrors.CodeInvalidRequest)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestSaveGuardrailDefaultsSeverity(t *testing.T) {
	service, _ := newCatalogService()

	g, err := service.SaveGuardrail(context.Background(), &catalog.Guardrail{
		ID:    "family-safe",
		Name:  "Family Safe",
		Rules: []string{"no scary stories"},
	})
	if err != nil {
		t.Fatalf("SaveGuardrail: %v", err)
	}
	if g.Severity != catalog.SeverityStandard {
		t.Errorf("severity = %s, want %s", g.Severity, catalog.SeverityStandard)
	}
}

func TestSaveGuardrailRejectsBadInput(t *testing.T) {
	service, _ := newCatalogService()

	tests := []struct {
		name      string
		guardrail catalog.Guardrail
	}{
		{"unknown severity", catalog.Guardrail{ID: "g", Name: "G", Severity: "draconian"}},
		{"blank rule", catalog.Guardrail{ID: "g", Name: "G", Rules: []string{"ok", "  "}}},
		{"missing name", catalog.Guardrail{ID: "g"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SaveGuardrail(context.Background(), &tt.guardrail)
			if !platformerrors.IsCode(err, platformerrors.CodeInvalidRequest) {
				t.Errorf("err = %v, want %s", err, platformerrors.CodeInvalidRequest)
			}
		})
	}
}

func TestSaveAnimal(t *testing.T) {
	service, animals := newCatalogService()

	a, err := service.SaveAnimal(context.Background(), &catalog.Animal{
		ID:      "animal_lena",
		Name:    "Lena",
		Species: "lion",
		Active:  true,
	})
	if err != nil {
		t.Fatalf("SaveAnimal: %v", err)
	}
	if stored := animals.animals["animal_lena"]; !stored.Active || stored.Species != "lion" {
		t.Errorf("stored animal = %+v", stored)
	}

	got, err := service.GetAnimal(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetAnimal: %v", err)
	}
	if got.Name != "Lena" {
		t.Errorf("name = %s, want Lena", got.Name)
	}

	if _, err := service.SaveAnimal(context.Background(), &catalog.Animal{ID: "animal_x"}); !platformerrors.IsCode(err, platformerrors.CodeInvalidRequest) {
		t.Errorf("err = %v, want %s", err, platformerrors.CodeInvalidRequest)
	}
}
