package assistant_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/prompt"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

type fakeAssistantRepo struct {
	byPublicID map[string]assistant.Assistant
	updates    int
}

func newFakeAssistantRepo() *fakeAssistantRepo {
	return &fakeAssistantRepo{byPublicID: make(map[string]assistant.Assistant)}
}

func (r *fakeAssistantRepo) Create(ctx context.Context, a *assistant.Assistant) error {
	for _, existing := range r.byPublicID {
		if existing.AnimalID == a.AnimalID {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"an assistant already exists for this animal", nil, platformerrors.CodeDuplicateAssistant)
		}
	}
	a.ID = uint(len(r.byPublicID) + 1)
	r.byPublicID[a.PublicID] = *a
	return nil
}

func (r *fakeAssistantRepo) FindByPublicID(ctx context.Context, publicID string) (*assistant.Assistant, error) {
	a, ok := r.byPublicID[publicID]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"assistant not found", nil, platformerrors.CodeNotFound)
	}
	copied := a
	return &copied, nil
}

func (r *fakeAssistantRepo) FindByAnimalID(ctx context.Context, animalID string) (*assistant.Assistant, error) {
	for _, a := range r.byPublicID {
		if a.AnimalID == animalID {
			copied := a
			return &copied, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"assistant not found", nil, platformerrors.CodeNotFound)
}

func (r *fakeAssistantRepo) List(ctx context.Context) ([]*assistant.Assistant, error) {
	out := make([]*assistant.Assistant, 0, len(r.byPublicID))
	for _, a := range r.byPublicID {
		copied := a
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeAssistantRepo) Update(ctx context.Context, a *assistant.Assistant) error {
	if _, ok := r.byPublicID[a.PublicID]; !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"assistant not found", nil, platformerrors.CodeNotFound)
	}
	r.updates++
	r.byPublicID[a.PublicID] = *a
	return nil
}

func (r *fakeAssistantRepo) UpsertByAnimalID(ctx context.Context, a *assistant.Assistant) error {
	for publicID, existing := range r.byPublicID {
		if existing.AnimalID == a.AnimalID {
			delete(r.byPublicID, publicID)
		}
	}
	r.byPublicID[a.PublicID] = *a
	return nil
}

func (r *fakeAssistantRepo) Delete(ctx context.Context, publicID string) error {
	if _, ok := r.byPublicID[publicID]; !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"assistant not found", nil, platformerrors.CodeNotFound)
	}
	delete(r.byPublicID, publicID)
	return nil
}

type fakeAnimalRepo struct {
	animals map[string]catalog.Animal
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

func (r *fakeAnimalRepo) Save(ctx context.Context, a *catalog.Animal) error {
	r.animals[a.ID] = *a
	return nil
}

type fakePersonalityRepo struct {
	items map[string]catalog.Personality
	reads int
}

func (r *fakePersonalityRepo) Save(ctx context.Context, p *catalog.Personality) error {
	r.items[p.ID] = *p
	return nil
}

func (r *fakePersonalityRepo) FindByID(ctx context.Context, id string) (*catalog.Personality, error) {
	r.reads++
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

type fakeCache struct {
	entries map[string]assistant.CachedPrompt
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]assistant.CachedPrompt)}
}

func (c *fakeCache) Get(ctx context.Context, assistantID string) (*assistant.CachedPrompt, error) {
	entry, ok := c.entries[assistantID]
	if !ok {
		return nil, nil
	}
	c.hits++
	copied := entry
	return &copied, nil
}

func (c *fakeCache) Set(ctx context.Context, assistantID string, entry *assistant.CachedPrompt) error {
	c.entries[assistantID] = *entry
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, assistantID string) error {
	delete(c.entries, assistantID)
	return nil
}

type assistantFixture struct {
	repo          *fakeAssistantRepo
	personalities *fakePersonalityRepo
	guardrails    *fakeGuardrailRepo
	cache         *fakeCache
	service       assistant.Service
}

func newAssistantFixture(t *testing.T) *assistantFixture {
	t.Helper()

	animals := &fakeAnimalRepo{animals: map[string]catalog.Animal{
		"animal_lena":  {ID: "animal_lena", Name: "Lena", Species: "lion", Active: true},
		"animal_dozer": {ID: "animal_dozer", Name: "Dozer", Species: "tortoise", Active: false},
	}}
	personalities := &fakePersonalityRepo{items: map[string]catalog.Personality{
		"gentle-storyteller": {ID: "gentle-storyteller", Name: "Gentle Storyteller", Description: "Speaks softly about the savanna.", UpdatedAt: time.Now().UTC()},
	}}
	guardrails := &fakeGuardrailRepo{items: map[string]catalog.Guardrail{
		"family-safe": {ID: "family-safe", Name: "Family Safe", Rules: []string{"no scary stories"}, Severity: catalog.SeverityStandard, UpdatedAt: time.Now().UTC()},
	}}

	f := &assistantFixture{
		repo:          newFakeAssistantRepo(),
		personalities: personalities,
		guardrails:    guardrails,
		cache:         newFakeCache(),
	}
	f.service = assistant.NewService(f.repo, animals, personalities, guardrails, f.cache, zerolog.Nop())
	return f
}

func TestCreateAssistant(t *testing.T) {
	f := newAssistantFixture(t)

	a, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:        "animal_lena",
		PersonalityID:   "gentle-storyteller",
		GuardrailID:     "family-safe",
		KnowledgeRefIDs: []string{"kb_lions"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != assistant.StatusActive {
		t.Errorf("status = %s, want ACTIVE", a.Status)
	}
	if a.CompiledPromptHash == "" {
		t.Error("assistant created without an input hash")
	}
	if _, ok := f.cache.entries[a.PublicID]; !ok {
		t.Error("compiled prompt not cached after create")
	}
}

func TestCreateAssistantRejectsTooManyKnowledgeRefs(t *testing.T) {
	f := newAssistantFixture(t)

	refs := make([]string, assistant.MaxKnowledgeRefs+1)
	for i := range refs {
		refs[i] = "kb_" + strconv.Itoa(i)
	}

	_, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:        "animal_lena",
		PersonalityID:   "gentle-storyteller",
		GuardrailID:     "family-safe",
		KnowledgeRefIDs: refs,
	})
	if !platformerrors.IsCode(err, platformerrors.CodeTooManyKnowledgeRefs) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeTooManyKnowledgeRefs)
	}
	if len(f.repo.byPublicID) != 0 {
		t.Error("rejected create still persisted an assistant")
	}
}

func TestCreateAssistantRejectsUnknownOrInactiveAnimal(t *testing.T) {
	f := newAssistantFixture(t)

	for _, animalID := range []string{"animal_ghost", "animal_dozer"} {
		_, err := f.service.Create(context.Background(), assistant.CreateParams{
			AnimalID:      animalID,
			PersonalityID: "gentle-storyteller",
			GuardrailID:   "family-safe",
		})
		if !platformerrors.IsCode(err, platformerrors.CodeInvalidAnimal) {
			t.Errorf("Create(%s) err = %v, want %s", animalID, err, platformerrors.CodeInvalidAnimal)
		}
	}
}

func TestCreateAssistantRejectsUnresolvableConfig(t *testing.T) {
	f := newAssistantFixture(t)

	_, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "missing-personality",
		GuardrailID:   "family-safe",
	})
	if !platformerrors.IsCode(err, platformerrors.CodeConfigurationUnresolved) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeConfigurationUnresolved)
	}
}

func TestUpdateAssistantRejectsAnimalReassignment(t *testing.T) {
	f := newAssistantFixture(t)

	a, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "gentle-storyteller",
		GuardrailID:   "family-safe",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := "animal_dozer"
	_, err = f.service.Update(context.Background(), a.PublicID, assistant.UpdateParams{AnimalID: &other})
	if !platformerrors.IsCode(err, platformerrors.CodeAnimalReassignment) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeAnimalReassignment)
	}
}

func TestUpdateStatusOnlySkipsRecompilation(t *testing.T) {
	f := newAssistantFixture(t)

	a, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "gentle-storyteller",
		GuardrailID:   "family-safe",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	readsBefore := f.personalities.reads
	inactive := assistant.StatusInactive
	updated, err := f.service.Update(context.Background(), a.PublicID, assistant.UpdateParams{Status: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != assistant.StatusInactive {
		t.Errorf("status = %s, want INACTIVE", updated.Status)
	}
	if updated.CompiledPromptHash != a.CompiledPromptHash {
		t.Error("status-only update changed the input hash")
	}
	if f.personalities.reads != readsBefore {
		t.Error("status-only update resolved the configuration")
	}
}

func TestEffectivePromptCacheHit(t *testing.T) {
	f := newAssistantFixture(t)

	a, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "gentle-storyteller",
		GuardrailID:   "family-safe",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updatesBefore := f.repo.updates
	got, err := f.service.EffectivePrompt(context.Background(), a.PublicID)
	if err != nil {
		t.Fatalf("EffectivePrompt: %v", err)
	}
	if got.InputHash != a.CompiledPromptHash {
		t.Errorf("input hash = %s, want %s", got.InputHash, a.CompiledPromptHash)
	}
	if f.cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", f.cache.hits)
	}
	if f.repo.updates != updatesBefore {
		t.Error("fresh prompt still rewrote the assistant record")
	}
}

func TestEffectivePromptRecompilesAfterPersonalityEdit(t *testing.T) {
	f := newAssistantFixture(t)

	a, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "gentle-storyteller",
		GuardrailID:   "family-safe",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Replace-in-place edit of the shared personality bumps its version marker.
	edited := f.personalities.items["gentle-storyteller"]
	edited.Description = "Speaks boldly about the savanna."
	edited.UpdatedAt = edited.UpdatedAt.Add(time.Minute)
	f.personalities.items["gentle-storyteller"] = edited

	got, err := f.service.EffectivePrompt(context.Background(), a.PublicID)
	if err != nil {
		t.Fatalf("EffectivePrompt: %v", err)
	}
	if got.InputHash == a.CompiledPromptHash {
		t.Fatal("stale prompt served after personality edit")
	}

	guardrail := f.guardrails.items["family-safe"]
	wantHash := prompt.InputHash(&edited, &guardrail, nil)
	if got.InputHash != wantHash {
		t.Errorf("input hash = %s, want %s", got.InputHash, wantHash)
	}

	stored := f.repo.byPublicID[a.PublicID]
	if stored.CompiledPromptHash != got.InputHash {
		t.Error("recompiled hash not written back to the assistant record")
	}
	if entry := f.cache.entries[a.PublicID]; entry.InputHash != got.InputHash {
		t.Error("recompiled prompt not cached")
	}
}

func TestDeleteAssistantEvictsCache(t *testing.T) {
	f := newAssistantFixture(t)

	a, err := f.service.Create(context.Background(), assistant.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "gentle-storyteller",
		GuardrailID:   "family-safe",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.service.Delete(context.Background(), a.PublicID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := f.cache.entries[a.PublicID]; ok {
		t.Error("cached prompt survived assistant deletion")
	}
	if _, err := f.service.Get(context.Background(), a.PublicID); !platformerrors.IsCode(err, platformerrors.CodeNotFound) {
		t.Errorf("Get after delete err = %v, want %s", err, platformerrors.CodeNotFound)
	}
}
