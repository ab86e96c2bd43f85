package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

type stubGenerator struct {
	calls  int
	err    error
	chunks []string
}

func (g *stubGenerator) StreamGeneration(_ context.Context, _, _ string, emit ports.EmitFunc) error {
	g.calls++
	if g.err != nil {
		return g.err
	}
	for _, chunk := range g.chunks {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

type stubLock struct {
	acquired []string
	released []string
	held     bool
	err      error
}

func (l *stubLock) Acquire(_ context.Context, accountID string) (bool, error) {
	l.acquired = append(l.acquired, accountID)
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *stubLock) Release(_ context.Context, accountID string) error {
	l.released = append(l.released, accountID)
	return nil
}

func seedMeteredAccount(repo *stubAccountRepo, id string, credits int) {
	repo.accounts[id] = &domain.Account{
		ID:             id,
		Email:          id + "@example.com",
		Credits:        credits,
		IsAgentEnabled: true,
	}
}

func newGenerationService(repo *stubAccountRepo, gen *stubGenerator) *GenerationService {
	svc := NewGenerationService(repo, gen, nil, nil, zerolog.Nop())
	svc.fallbackWait = time.Millisecond
	return svc
}

func collectEmitter() (ports.EmitFunc, *[]string) {
	var chunks []string
	return func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	}, &chunks
}

func TestGenerationService_Authorize_ChargesOneCredit(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	svc := newGenerationService(repo, &stubGenerator{})

	account, err := svc.Authorize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if account.Credits != 2 {
		t.Fatalf("expected in-memory balance 2, got %d", account.Credits)
	}
	if repo.accounts["u1"].Credits != 2 {
		t.Fatalf("expected stored balance 2, got %d", repo.accounts["u1"].Credits)
	}
}

func TestGenerationService_NoRefundOnProviderFailure(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	gen := &stubGenerator{err: errors.New("upstream 502")}
	svc := newGenerationService(repo, gen)

	account, err := svc.Authorize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}

	emit, _ := collectEmitter()
	if err := svc.Stream(context.Background(), account, ports.GenerateInput{UserGoal: "g", SkillLevel: "beginner"}, emit); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	// Pay-per-attempt: the fallback stream does not restore the credit.
	if repo.accounts["u1"].Credits != 2 {
		t.Fatalf("expected balance 2 after failed attempt, got %d", repo.accounts["u1"].Credits)
	}
}

func TestGenerationService_UnlimitedCreditsNeverMutated(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", domain.UnlimitedCredits)
	svc := newGenerationService(repo, &stubGenerator{})

	for i := 0; i < 3; i++ {
		account, err := svc.Authorize(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Authorize returned error on attempt %d: %v", i, err)
		}
		if account.Credits != domain.UnlimitedCredits {
			t.Fatalf("unlimited sentinel mutated: %d", account.Credits)
		}
	}
	if repo.accounts["u1"].Credits != domain.UnlimitedCredits {
		t.Fatalf("stored sentinel mutated: %d", repo.accounts["u1"].Credits)
	}
}

func TestGenerationService_ZeroCreditsRejectedBeforeProviderCall(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 0)
	gen := &stubGenerator{}
	svc := newGenerationService(repo, gen)

	if _, err := svc.Authorize(context.Background(), "u1"); !errors.Is(err, domain.ErrCreditsExhausted) {
		t.Fatalf("expected ErrCreditsExhausted, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("provider called despite exhausted credits")
	}
	if repo.accounts["u1"].Credits != 0 {
		t.Fatalf("balance mutated on rejection: %d", repo.accounts["u1"].Credits)
	}
}

func TestGenerationService_Authorize_Rejections(t *testing.T) {
	repo := newStubAccountRepo()

	blocked := &domain.Account{ID: "b1", Credits: 5, IsAgentEnabled: true, IsBlocked: true}
	disabled := &domain.Account{ID: "d1", Credits: 5, IsAgentEnabled: false}
	repo.accounts["b1"] = blocked
	repo.accounts["d1"] = disabled

	svc := newGenerationService(repo, &stubGenerator{})

	cases := []struct {
		name   string
		userID string
		want   error
	}{
		{"missing account", "nope", domain.ErrAccountNotFound},
		{"blocked account", "b1", domain.ErrAccountBlocked},
		{"agent disabled", "d1", domain.ErrAgentDisabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Authorize(context.Background(), tc.userID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Blocked outranks the credit check even when credits are exhausted.
	blocked.Credits = 0
	if _, err := svc.Authorize(context.Background(), "b1"); !errors.Is(err, domain.ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked for blocked account with no credits, got %v", err)
	}
}

func TestGenerationService_Stream_Success(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	gen := &stubGenerator{chunks: []string{"part one ", "part two"}}
	svc := newGenerationService(repo, gen)

	account, err := svc.Authorize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}

	emit, chunks := collectEmitter()
	if err := svc.Stream(context.Background(), account, ports.GenerateInput{UserGoal: "g", SkillLevel: "beginner"}, emit); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	got := *chunks
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(got), got)
	}
	if got[0] != "[DEBUG] Connecting to generation provider..." {
		t.Fatalf("unexpected opening marker: %q", got[0])
	}
	if got[1]+got[2] != "part one part two" {
		t.Fatalf("content chunks mangled: %q", got[1:])
	}
}

func TestGenerationService_Stream_Fallback(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	gen := &stubGenerator{err: errors.New("upstream 502")}
	svc := newGenerationService(repo, gen)

	account, err := svc.Authorize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}

	emit, chunks := collectEmitter()
	if err := svc.Stream(context.Background(), account, ports.GenerateInput{UserGoal: "g", SkillLevel: "beginner"}, emit); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	got := *chunks
	if len(got) < 6 {
		t.Fatalf("expected diagnostics plus payload, got %d chunks", len(got))
	}
	if got[0] != "[DEBUG] Connecting to generation provider..." {
		t.Fatalf("unexpected opening marker: %q", got[0])
	}
	if !strings.HasPrefix(got[1], "[DEBUG] Exception: ") || !strings.Contains(got[1], "upstream 502") {
		t.Fatalf("unexpected exception marker: %q", got[1])
	}
	if !strings.HasPrefix(got[2], "[DEBUG] Trace: ") {
		t.Fatalf("unexpected trace marker: %q", got[2])
	}
	if got[3] != "[DEBUG] Waiting 3 seconds before activating Mock Protocol..." {
		t.Fatalf("unexpected wait marker: %q", got[3])
	}
	if got[4] != "[DEBUG] SWITCHING TO MOCK DATA NOW." {
		t.Fatalf("unexpected switch marker: %q", got[4])
	}

	var payload strings.Builder
	for _, chunk := range got[5:] {
		if utf8.RuneCountInString(chunk) > fallbackChunkSize {
			t.Fatalf("payload chunk exceeds %d runes: %q", fallbackChunkSize, chunk)
		}
		payload.WriteString(chunk)
	}
	if payload.String() != fallbackDocument {
		t.Fatalf("fallback payload did not reassemble:\n%s", payload.String())
	}
}

func TestGenerationService_Stream_CallerGoneAborts(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	gen := &stubGenerator{err: errors.New("upstream 502")}
	svc := newGenerationService(repo, gen)

	account, err := svc.Authorize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var count int
	emit := func(string) error {
		count++
		if count == 2 {
			cancel()
			return context.Canceled
		}
		return nil
	}

	if err := svc.Stream(ctx, account, ports.GenerateInput{UserGoal: "g", SkillLevel: "beginner"}, emit); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerationService_Authorize_LockLifecycle(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	lock := &stubLock{}
	svc := NewGenerationService(repo, &stubGenerator{}, lock, nil, zerolog.Nop())

	if _, err := svc.Authorize(context.Background(), "u1"); err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if len(lock.acquired) != 1 || lock.acquired[0] != "u1" {
		t.Fatalf("lock not acquired: %v", lock.acquired)
	}
	if len(lock.released) != 1 || lock.released[0] != "u1" {
		t.Fatalf("lock not released: %v", lock.released)
	}
}

func TestGenerationService_Authorize_LockFailureProceeds(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 3)
	lock := &stubLock{err: errors.New("redis down")}
	svc := NewGenerationService(repo, &stubGenerator{}, lock, nil, zerolog.Nop())

	account, err := svc.Authorize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected lock failure to be tolerated, got %v", err)
	}
	if account.Credits != 2 {
		t.Fatalf("expected credit charged despite lock failure, got %d", account.Credits)
	}
	if len(lock.released) != 0 {
		t.Fatalf("released a lock that was never held")
	}
}

func TestGenerationService_Authorize_AuditsCreditConsumption(t *testing.T) {
	repo := newStubAccountRepo()
	seedMeteredAccount(repo, "u1", 2)
	audit := &recordingAudit{}
	svc := NewGenerationService(repo, &stubGenerator{}, nil, audit, zerolog.Nop())

	if _, err := svc.Authorize(context.Background(), "u1"); err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Action != domain.AuditCreditConsumed || entry.AccountID != "u1" || entry.Detail != "remaining=1" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
}
