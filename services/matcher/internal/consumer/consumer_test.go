package consumer_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	commonerrors "github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/errors"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/consumer"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	profiles []models.CompanySearchProfile
	err      error
}

func (f *fakeDirectory) GetAllSearchProfiles(ctx context.Context) ([]models.CompanySearchProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []models.MatchEvent
	failFor   map[string]error
}

func (f *fakePublisher) PublishMatch(ctx context.Context, event models.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[event.CompanyID]; ok {
		return err
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakePublisher) Close() {}

func (f *fakePublisher) companies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.published))
	for _, e := range f.published {
		ids = append(ids, e.CompanyID)
	}
	sort.Strings(ids)
	return ids
}

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func testConfig() *config.Config {
	return &config.Config{
		EmitWorkers: 4,
		EmitRetries: 0,
		RetryDelay:  time.Millisecond,
	}
}

func matchingProfile(companyID string) models.CompanySearchProfile {
	return models.CompanySearchProfile{
		CompanyID:        companyID,
		Country:          "VN",
		DesiredSkillTags: []string{"kafka"},
	}
}

const applicantJSON = `{
	"applicantId": "app-1",
	"displayName": "Ada",
	"country": "vn",
	"skillTags": ["Java", "Kafka"],
	"employmentPreferences": ["FULL_TIME"],
	"expectedSalaryMin": 2000,
	"expectedSalaryMax": 3000
}`

func TestProcessApplicantCreated_EmitsOnePerMatch(t *testing.T) {
	dir := &fakeDirectory{profiles: []models.CompanySearchProfile{
		matchingProfile("co-1"),
		{CompanyID: "co-2", Country: "US", DesiredSkillTags: []string{"kafka"}},
		matchingProfile("co-3"),
	}}
	pub := &fakePublisher{}

	c := consumer.NewConsumer(dir, pub, zap.NewNop(), testConfig())

	if err := c.ProcessApplicantCreated(context.Background(), []byte(applicantJSON)); err != nil {
		t.Fatalf("ProcessApplicantCreated returned error: %v", err)
	}

	got := pub.companies()
	want := []string{"co-1", "co-3"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("published to %v, want %v", got, want)
	}

	for _, e := range pub.published {
		if e.ApplicantID != "app-1" || e.ApplicantName != "Ada" {
			t.Errorf("unexpected event payload: %+v", e)
		}
	}
}

func TestProcessApplicantCreated_MalformedPayload(t *testing.T) {
	dir := &fakeDirectory{}
	pub := &fakePublisher{}
	c := consumer.NewConsumer(dir, pub, zap.NewNop(), testConfig())

	err := c.ProcessApplicantCreated(context.Background(), []byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if !commonerrors.IsInvalidInput(err) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestProcessApplicantCreated_MissingApplicantID(t *testing.T) {
	c := consumer.NewConsumer(&fakeDirectory{}, &fakePublisher{}, zap.NewNop(), testConfig())

	err := c.ProcessApplicantCreated(context.Background(), []byte(`{"displayName": "Ada"}`))
	if err == nil {
		t.Fatal("expected error for event without applicantId")
	}
	if !commonerrors.IsInvalidInput(err) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestProcessApplicantCreated_DirectoryUnavailableIsRetryable(t *testing.T) {
	dir := &fakeDirectory{err: commonerrors.Unavailable("directory down", nil)}
	pub := &fakePublisher{}
	c := consumer.NewConsumer(dir, pub, zap.NewNop(), testConfig())

	err := c.ProcessApplicantCreated(context.Background(), []byte(applicantJSON))
	if err == nil {
		t.Fatal("expected error when directory is unavailable")
	}
	if !commonerrors.IsUnavailable(err) {
		t.Errorf("expected UNAVAILABLE, got %v", err)
	}
	if len(pub.companies()) != 0 {
		t.Error("nothing should be published when the directory cannot be read")
	}
}

func TestProcessApplicantCreated_ZeroMatchesIsTerminal(t *testing.T) {
	dir := &fakeDirectory{profiles: []models.CompanySearchProfile{
		{CompanyID: "co-1", Country: "US", DesiredSkillTags: []string{"rust"}},
	}}
	pub := &fakePublisher{}
	c := consumer.NewConsumer(dir, pub, zap.NewNop(), testConfig())

	if err := c.ProcessApplicantCreated(context.Background(), []byte(applicantJSON)); err != nil {
		t.Fatalf("zero matches must not be an error, got %v", err)
	}
	if len(pub.companies()) != 0 {
		t.Errorf("expected no events, got %v", pub.companies())
	}
}

// One company's broken emission must not stop the others.
func TestProcessApplicantCreated_IsolatesEmissionFailures(t *testing.T) {
	dir := &fakeDirectory{profiles: []models.CompanySearchProfile{
		matchingProfile("co-1"),
		matchingProfile("co-2"),
		matchingProfile("co-3"),
	}}
	pub := &fakePublisher{failFor: map[string]error{
		"co-2": commonerrors.Unavailable("broker hiccup", nil),
	}}

	c := consumer.NewConsumer(dir, pub, zap.NewNop(), testConfig())

	if err := c.ProcessApplicantCreated(context.Background(), []byte(applicantJSON)); err != nil {
		t.Fatalf("partial emission failure must not fail the event, got %v", err)
	}

	got := pub.companies()
	want := []string{"co-1", "co-3"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("published to %v, want %v", got, want)
	}
}

func TestProcessApplicantCreated_RetriesFailedEmission(t *testing.T) {
	dir := &fakeDirectory{profiles: []models.CompanySearchProfile{matchingProfile("co-1")}}
	pub := &flakyPublisher{failures: 1}

	cfg := testConfig()
	cfg.EmitRetries = 2

	c := consumer.NewConsumer(dir, pub, zap.NewNop(), cfg)

	if err := c.ProcessApplicantCreated(context.Background(), []byte(applicantJSON)); err != nil {
		t.Fatalf("ProcessApplicantCreated returned error: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.succeeded != 1 {
		t.Fatalf("expected 1 successful emission after retry, got %d", pub.succeeded)
	}
	if pub.attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", pub.attempts)
	}
}

// flakyPublisher fails the first N attempts, then succeeds.
type flakyPublisher struct {
	mu        sync.Mutex
	failures  int
	attempts  int
	succeeded int
}

func (f *flakyPublisher) PublishMatch(ctx context.Context, event models.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failures {
		return commonerrors.Unavailable("transient publish failure", nil)
	}
	f.succeeded++
	return nil
}

func (f *flakyPublisher) Close() {}

func TestProcessApplicantCreated_NoSalaryPreferencePasses(t *testing.T) {
	profile := matchingProfile("co-1")
	profile.DesiredSalaryMin = dec("5000")

	dir := &fakeDirectory{profiles: []models.CompanySearchProfile{profile}}
	pub := &fakePublisher{}
	c := consumer.NewConsumer(dir, pub, zap.NewNop(), testConfig())

	noSalary := `{"applicantId": "app-2", "displayName": "Lin", "country": "VN", "skillTags": ["kafka"]}`
	if err := c.ProcessApplicantCreated(context.Background(), []byte(noSalary)); err != nil {
		t.Fatalf("ProcessApplicantCreated returned error: %v", err)
	}

	if got := pub.companies(); len(got) != 1 || got[0] != "co-1" {
		t.Fatalf("expected a single match for co-1, got %v", got)
	}
}
