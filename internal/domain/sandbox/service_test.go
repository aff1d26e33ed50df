package sandbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/domain/sandbox"
	"zooworld/assistant-api/internal/utils/platformerrors"
)

type fakeSandboxRepo struct {
	items map[string]sandbox.Sandbox
}

func newFakeSandboxRepo() *fakeSandboxRepo {
	return &fakeSandboxRepo{items: make(map[string]sandbox.Sandbox)}
}

func (r *fakeSandboxRepo) Create(ctx context.Context, sb *sandbox.Sandbox) error {
	sb.ID = uint(len(r.items) + 1)
	r.items[sb.PublicID] = *sb
	return nil
}

func (r *fakeSandboxRepo) FindByPublicID(ctx context.Context, publicID string) (*sandbox.Sandbox, error) {
	sb, ok := r.items[publicID]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"sandbox not found", nil, platformerrors.CodeNotFound)
	}
	copied := sb
	return &copied, nil
}

func (r *fakeSandboxRepo) Update(ctx context.Context, sb *sandbox.Sandbox) error {
	if _, ok := r.items[sb.PublicID]; !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"sandbox not found", nil, platformerrors.CodeNotFound)
	}
	r.items[sb.PublicID] = *sb
	return nil
}

func (r *fakeSandboxRepo) Delete(ctx context.Context, publicID string) error {
	delete(r.items, publicID)
	return nil
}

type fakeAssistantRepo struct {
	byAnimal map[string]assistant.Assistant
	upserts  int
}

func newFakeAssistantRepo() *fakeAssistantRepo {
	return &fakeAssistantRepo{byAnimal: make(map[string]assistant.Assistant)}
}

func (r *fakeAssistantRepo) Create(ctx context.Context, a *assistant.Assistant) error {
	r.byAnimal[a.AnimalID] = *a
	return nil
}

func (r *fakeAssistantRepo) FindByPublicID(ctx context.Context, publicID string) (*assistant.Assistant, error) {
	for _, a := range r.byAnimal {
		if a.PublicID == publicID {
			copied := a
			return &copied, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		"assistant not found", nil, platformerrors.CodeNotFound)
}

func (r *fakeAssistantRepo) FindByAnimalID(ctx context.Context, animalID string) (*assistant.Assistant, error) {
	a, ok := r.byAnimal[animalID]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"assistant not found", nil, platformerrors.CodeNotFound)
	}
	copied := a
	return &copied, nil
}

func (r *fakeAssistantRepo) List(ctx context.Context) ([]*assistant.Assistant, error) {
	return nil, nil
}

func (r *fakeAssistantRepo) Update(ctx context.Context, a *assistant.Assistant) error {
	r.byAnimal[a.AnimalID] = *a
	return nil
}

func (r *fakeAssistantRepo) UpsertByAnimalID(ctx context.Context, a *assistant.Assistant) error {
	r.upserts++
	r.byAnimal[a.AnimalID] = *a
	return nil
}

func (r *fakeAssistantRepo) Delete(ctx context.Context, publicID string) error {
	for animalID, a := range r.byAnimal {
		if a.PublicID == publicID {
			delete(r.byAnimal, animalID)
		}
	}
	return nil
}

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

type fakeCache struct {
	entries map[string]assistant.CachedPrompt
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]assistant.CachedPrompt)}
}

func (c *fakeCache) Get(ctx context.Context, assistantID string) (*assistant.CachedPrompt, error) {
	entry, ok := c.entries[assistantID]
	if !ok {
		return nil, nil
	}
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

type fakeGenerator struct {
	GenerateFunc func(ctx context.Context, req reply.Request) (*reply.Result, error)
	calls        int
}

func (g *fakeGenerator) Generate(ctx context.Context, req reply.Request) (*reply.Result, error) {
	g.calls++
	if g.GenerateFunc != nil {
		return g.GenerateFunc(ctx, req)
	}
	return &reply.Result{Reply: "hello from the enclosure", Model: "test-model"}, nil
}

type sandboxFixture struct {
	repo       *fakeSandboxRepo
	assistants *fakeAssistantRepo
	generator  *fakeGenerator
	service    sandbox.Service
}

func newSandboxFixture(t *testing.T, ttl time.Duration) *sandboxFixture {
	t.Helper()
	return newSandboxFixtureWithReplyTimeout(t, ttl, time.Second)
}

func newSandboxFixtureWithReplyTimeout(t *testing.T, ttl, replyTimeout time.Duration) *sandboxFixture {
	t.Helper()

	personalities := &fakePersonalityRepo{items: map[string]catalog.Personality{
		"gentle-storyteller": {ID: "gentle-storyteller", Name: "Gentle Storyteller", Description: "Speaks softly about the savanna.", UpdatedAt: time.Now().UTC()},
	}}
	guardrails := &fakeGuardrailRepo{items: map[string]catalog.Guardrail{
		"family-safe": {ID: "family-safe", Name: "Family Safe", Rules: []string{"no scary stories"}, Severity: catalog.SeverityStandard, UpdatedAt: time.Now().UTC()},
	}}

	f := &sandboxFixture{
		repo:       newFakeSandboxRepo(),
		assistants: newFakeAssistantRepo(),
		generator:  &fakeGenerator{},
	}
	f.service = sandbox.NewService(f.repo, f.assistants, personalities, guardrails, newFakeCache(), f.generator, ttl, replyTimeout, zerolog.Nop())
	return f
}

func createDraft(t *testing.T, f *sandboxFixture) *sandbox.Sandbox {
	t.Helper()
	sb, err := f.service.Create(context.Background(), sandbox.CreateParams{
		AnimalID:      "animal_lena",
		PersonalityID: "gentle-storyteller",
		GuardrailID:   "family-safe",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sb
}

func TestSandboxLifecycleHappyPath(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	if sb.Status != sandbox.StatusDraft {
		t.Fatalf("status = %s, want DRAFT", sb.Status)
	}
	if sb.CompiledPrompt == "" || sb.CompiledPromptHash == "" {
		t.Fatal("sandbox created without a compiled prompt")
	}

	result, err := f.service.TrialTurn(context.Background(), sb.PublicID, "tell me about lions", nil)
	if err != nil {
		t.Fatalf("TrialTurn: %v", err)
	}
	if result.Reply == "" {
		t.Fatal("trial turn returned empty reply")
	}

	tested, err := f.service.MarkTested(context.Background(), sb.PublicID)
	if err != nil {
		t.Fatalf("MarkTested: %v", err)
	}
	if tested.Status != sandbox.StatusTested {
		t.Fatalf("status = %s, want TESTED", tested.Status)
	}

	promoted, err := f.service.Promote(context.Background(), sb.PublicID, true)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted.AnimalID != "animal_lena" || promoted.Status != assistant.StatusActive {
		t.Fatalf("promoted assistant = %+v", promoted)
	}

	if _, err := f.repo.FindByPublicID(context.Background(), sb.PublicID); err == nil {
		t.Fatal("sandbox still exists after promotion")
	}
}

func TestMarkTestedRequiresTrialTurn(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	_, err := f.service.MarkTested(context.Background(), sb.PublicID)
	if !platformerrors.IsCode(err, platformerrors.CodeNotYetTrialed) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeNotYetTrialed)
	}
}

func TestMarkTestedIsIdempotent(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	if _, err := f.service.TrialTurn(context.Background(), sb.PublicID, "hi", nil); err != nil {
		t.Fatalf("TrialTurn: %v", err)
	}
	if _, err := f.service.MarkTested(context.Background(), sb.PublicID); err != nil {
		t.Fatalf("first MarkTested: %v", err)
	}

	again, err := f.service.MarkTested(context.Background(), sb.PublicID)
	if err != nil {
		t.Fatalf("second MarkTested: %v", err)
	}
	if again.Status != sandbox.StatusTested {
		t.Fatalf("status = %s, want TESTED", again.Status)
	}
}

func TestSandboxLazyExpiry(t *testing.T) {
	f := newSandboxFixture(t, -time.Minute) // already expired on creation
	sb := createDraft(t, f)

	got, err := f.service.Get(context.Background(), sb.PublicID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != sandbox.StatusExpired {
		t.Fatalf("status = %s, want EXPIRED", got.Status)
	}

	if _, err := f.service.TrialTurn(context.Background(), sb.PublicID, "hi", nil); !platformerrors.IsCode(err, platformerrors.CodeSandboxExpired) {
		t.Fatalf("TrialTurn err = %v, want %s", err, platformerrors.CodeSandboxExpired)
	}
	if _, err := f.service.Promote(context.Background(), sb.PublicID, true); !platformerrors.IsCode(err, platformerrors.CodeSandboxExpired) {
		t.Fatalf("Promote err = %v, want %s", err, platformerrors.CodeSandboxExpired)
	}
	if f.generator.calls != 0 {
		t.Fatal("expired sandbox reached the generator")
	}
}

func TestPromoteRequiresTested(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	_, err := f.service.Promote(context.Background(), sb.PublicID, true)
	if !platformerrors.IsCode(err, platformerrors.CodeNotTested) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeNotTested)
	}
}

func TestPromoteRequiresAuthorization(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	if _, err := f.service.TrialTurn(context.Background(), sb.PublicID, "hi", nil); err != nil {
		t.Fatalf("TrialTurn: %v", err)
	}
	if _, err := f.service.MarkTested(context.Background(), sb.PublicID); err != nil {
		t.Fatalf("MarkTested: %v", err)
	}

	_, err := f.service.Promote(context.Background(), sb.PublicID, false)
	if !platformerrors.IsCode(err, platformerrors.CodeUnauthorized) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeUnauthorized)
	}
	if f.assistants.upserts != 0 {
		t.Fatal("unauthorized promote reached the assistant store")
	}
}

func TestPromoteReplacesExistingAssistant(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	f.assistants.byAnimal["animal_lena"] = assistant.Assistant{
		PublicID: "asst_old",
		AnimalID: "animal_lena",
		Status:   assistant.StatusActive,
	}

	sb := createDraft(t, f)
	if _, err := f.service.TrialTurn(context.Background(), sb.PublicID, "hi", nil); err != nil {
		t.Fatalf("TrialTurn: %v", err)
	}
	if _, err := f.service.MarkTested(context.Background(), sb.PublicID); err != nil {
		t.Fatalf("MarkTested: %v", err)
	}

	promoted, err := f.service.Promote(context.Background(), sb.PublicID, true)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted.PublicID == "asst_old" {
		t.Fatal("promotion kept the old assistant record")
	}
	if current := f.assistants.byAnimal["animal_lena"]; current.CompiledPromptHash != sb.CompiledPromptHash {
		t.Fatal("promoted assistant does not carry the sandbox configuration")
	}
}

func TestPromoteRetryAfterPartialFailure(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	// Simulate a promote that applied the assistant but crashed before cleanup.
	stored := f.repo.items[sb.PublicID]
	stored.Status = sandbox.StatusPromoted
	f.repo.items[sb.PublicID] = stored
	f.assistants.byAnimal[sb.AnimalID] = assistant.Assistant{
		PublicID:           "asst_applied",
		AnimalID:           sb.AnimalID,
		Status:             assistant.StatusActive,
		CompiledPromptHash: sb.CompiledPromptHash,
	}

	promoted, err := f.service.Promote(context.Background(), sb.PublicID, true)
	if err != nil {
		t.Fatalf("Promote retry: %v", err)
	}
	if promoted.PublicID != "asst_applied" {
		t.Fatalf("retry returned %s, want the already applied assistant", promoted.PublicID)
	}
	if f.assistants.upserts != 0 {
		t.Fatal("retry re-applied the assistant upsert")
	}
	if _, err := f.repo.FindByPublicID(context.Background(), sb.PublicID); err == nil {
		t.Fatal("retry did not finish the sandbox cleanup")
	}
}

func TestTrialTurnGeneratorFailureDoesNotCountTrial(t *testing.T) {
	f := newSandboxFixture(t, 30*time.Minute)
	sb := createDraft(t, f)

	f.generator.GenerateFunc = func(ctx context.Context, req reply.Request) (*reply.Result, error) {
		return nil, errors.New("upstream exploded")
	}

	if _, err := f.service.TrialTurn(context.Background(), sb.PublicID, "hi", nil); err == nil {
		t.Fatal("expected trial turn error")
	}

	got, err := f.service.Get(context.Background(), sb.PublicID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TrialCount != 0 {
		t.Fatalf("trial count = %d after failed turn, want 0", got.TrialCount)
	}
}

func TestTrialTurnGeneratorTimeout(t *testing.T) {
	f := newSandboxFixtureWithReplyTimeout(t, 30*time.Minute, 10*time.Millisecond)
	sb := createDraft(t, f)

	f.generator.GenerateFunc = func(ctx context.Context, req reply.Request) (*reply.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := f.service.TrialTurn(context.Background(), sb.PublicID, "hi", nil)
	if !platformerrors.IsCode(err, platformerrors.CodeReplyGeneratorTimeout) {
		t.Fatalf("err = %v, want %s", err, platformerrors.CodeReplyGeneratorTimeout)
	}

	got, err := f.service.Get(context.Background(), sb.PublicID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TrialCount != 0 {
		t.Fatalf("trial count = %d after timed-out turn, want 0", got.TrialCount)
	}
}
