package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/upskillai/roadmap-api/internal/core/domain"
	"github.com/upskillai/roadmap-api/internal/core/ports"
)

type stubGenerationService struct {
	account      *domain.Account
	authorizeErr error
	chunks       []string
	streamed     []ports.GenerateInput
}

func (s *stubGenerationService) Authorize(_ context.Context, _ string) (*domain.Account, error) {
	if s.authorizeErr != nil {
		return nil, s.authorizeErr
	}
	return s.account, nil
}

func (s *stubGenerationService) Stream(_ context.Context, _ *domain.Account, input ports.GenerateInput, emit ports.EmitFunc) error {
	s.streamed = append(s.streamed, input)
	for _, chunk := range s.chunks {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

type stubRoadmapService struct {
	saved   *domain.Roadmap
	listed  []*domain.Roadmap
	err     error
	deleted []string
}

func (s *stubRoadmapService) Save(_ context.Context, input ports.SaveRoadmapInput) (*domain.Roadmap, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.saved, nil
}

func (s *stubRoadmapService) ListByUser(_ context.Context, _ string) ([]*domain.Roadmap, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listed, nil
}

func (s *stubRoadmapService) Get(_ context.Context, _, _ string) (*domain.Roadmap, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.saved, nil
}

func (s *stubRoadmapService) Delete(_ context.Context, id, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func authedContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newTestContext(body)
	c.Set("user_id", "u1")
	c.Set("email", "u@example.com")
	c.Set("is_admin", false)
	return c, rec
}

func TestRoadmapHandler_Generate_StreamsFramedChunks(t *testing.T) {
	gen := &stubGenerationService{
		account: &domain.Account{ID: "u1", Credits: 2, IsAgentEnabled: true},
		chunks:  []string{"[DEBUG] Connecting to generation provider...", "chunk one", "chunk two"},
	}
	h := NewRoadmapHandler(gen, &stubRoadmapService{}, zerolog.Nop())

	c, rec := authedContext(`{"prompt":"learn go","skill_level":"advanced"}`)
	if err := h.Generate(c); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 framed lines, got %d: %q", len(lines), lines)
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "0:") {
			t.Fatalf("line %d not framed: %q", i, line)
		}
		var decoded string
		if err := json.Unmarshal([]byte(line[2:]), &decoded); err != nil {
			t.Fatalf("line %d payload not a JSON string: %v", i, err)
		}
		if decoded != gen.chunks[i] {
			t.Fatalf("line %d decoded to %q, want %q", i, decoded, gen.chunks[i])
		}
	}

	if len(gen.streamed) != 1 {
		t.Fatalf("expected one stream call, got %d", len(gen.streamed))
	}
	if gen.streamed[0].UserGoal != "learn go" || gen.streamed[0].SkillLevel != "advanced" {
		t.Fatalf("unexpected generate input: %+v", gen.streamed[0])
	}
}

func TestRoadmapHandler_Generate_UserGoalOverridesPrompt(t *testing.T) {
	gen := &stubGenerationService{account: &domain.Account{ID: "u1"}}
	h := NewRoadmapHandler(gen, &stubRoadmapService{}, zerolog.Nop())

	c, _ := authedContext(`{"prompt":"raw prompt","user_goal":"become an ML engineer"}`)
	if err := h.Generate(c); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if gen.streamed[0].UserGoal != "become an ML engineer" {
		t.Fatalf("user_goal did not override prompt: %+v", gen.streamed[0])
	}
	if gen.streamed[0].SkillLevel != "beginner" {
		t.Fatalf("expected default skill level, got %q", gen.streamed[0].SkillLevel)
	}
}

func TestRoadmapHandler_Generate_EligibilityFailureBeforeStream(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"exhausted credits", domain.ErrCreditsExhausted},
		{"blocked", domain.ErrAccountBlocked},
		{"agent disabled", domain.ErrAgentDisabled},
		{"missing account", domain.ErrAccountNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerationService{authorizeErr: tc.err}
			h := NewRoadmapHandler(gen, &stubRoadmapService{}, zerolog.Nop())

			c, rec := authedContext(`{"prompt":"learn go"}`)
			if err := h.Generate(c); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v to propagate, got %v", tc.err, err)
			}
			if rec.Body.Len() != 0 {
				t.Fatalf("stream body written despite rejection: %q", rec.Body.String())
			}
			if len(gen.streamed) != 0 {
				t.Fatal("stream called despite rejection")
			}
		})
	}
}

func TestRoadmapHandler_Generate_MissingPrompt(t *testing.T) {
	h := NewRoadmapHandler(&stubGenerationService{}, &stubRoadmapService{}, zerolog.Nop())

	c, _ := authedContext(`{"skill_level":"beginner"}`)
	err := h.Generate(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing prompt, got %v", err)
	}
}

func TestRoadmapHandler_Save(t *testing.T) {
	payload := json.RawMessage(`{"roadmap_title":"Go"}`)
	svc := &stubRoadmapService{
		saved: &domain.Roadmap{ID: "r1", UserID: "u1", Title: "Go", UserGoal: "g", SkillLevel: "beginner", RoadmapData: payload},
	}
	h := NewRoadmapHandler(&stubGenerationService{}, svc, zerolog.Nop())

	c, rec := authedContext(`{"title":"Go","user_goal":"g","skill_level":"beginner","roadmap_data":{"roadmap_title":"Go"}}`)
	if err := h.Save(c); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	var resp roadmapResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp.ID != "r1" || resp.Title != "Go" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRoadmapHandler_Save_Validation(t *testing.T) {
	h := NewRoadmapHandler(&stubGenerationService{}, &stubRoadmapService{}, zerolog.Nop())

	c, _ := authedContext(`{"title":"Go"}`)
	err := h.Save(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for incomplete payload, got %v", err)
	}
}

func TestRoadmapHandler_Get_ErrorsPropagate(t *testing.T) {
	for _, sentinel := range []error{domain.ErrRoadmapNotFound, domain.ErrForbidden} {
		h := NewRoadmapHandler(&stubGenerationService{}, &stubRoadmapService{err: sentinel}, zerolog.Nop())

		c, _ := authedContext(``)
		c.SetParamNames("id")
		c.SetParamValues("r1")
		if err := h.Get(c); !errors.Is(err, sentinel) {
			t.Fatalf("expected %v to propagate, got %v", sentinel, err)
		}
	}
}

func TestRoadmapHandler_Delete(t *testing.T) {
	svc := &stubRoadmapService{}
	h := NewRoadmapHandler(&stubGenerationService{}, svc, zerolog.Nop())

	c, rec := authedContext(``)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if len(svc.deleted) != 1 || svc.deleted[0] != "r1" {
		t.Fatalf("unexpected delete calls: %v", svc.deleted)
	}
	if !strings.Contains(rec.Body.String(), "Roadmap deleted successfully") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
