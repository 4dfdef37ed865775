// Package generation содержит бизнес-логику генерации контента: проверку
// прав, вызов внешнего провайдера генерации и best-effort учёт использования.
package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/llm"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/sermon"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/entitlement"
)

// LimitReachedError сигнализирует об исчерпанной бесплатной квоте.
// Отличим от прочих ошибок, чтобы клиент мог показать путь к подписке.
type LimitReachedError struct {
	TotalUsage int
}

func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("generation limit reached: %d creations used", e.TotalUsage)
}

// Completer описывает интерфейс провайдера генерации текста.
type Completer interface {
	Complete(ctx context.Context, system, user string) (*llm.Completion, error)
}

// Entitlements описывает интерфейс проверки прав и учёта использования.
type Entitlements interface {
	Check(ctx context.Context, userUID string) (entitlement.Entitlement, error)
	RecordUsage(ctx context.Context, userUID, contentType string) error
	FreeLimit() int
}

// GenerateRequest — валидированные параметры генерации.
type GenerateRequest struct {
	Input         string
	Mode          string // sermon или study
	SermonOptions models.SermonOptions
}

// RegenerateRequest — валидированные параметры перегенерации секции.
type RegenerateRequest struct {
	Section        string // introduction, illustrations, application, points или full
	OriginalSermon string
	OriginalInputs map[string]any
	AdditionalNote string
}

// Result — итог генерации вместе со снимком прав пользователя.
type Result struct {
	Content               string
	Usage                 *llm.Completion
	HasActiveSubscription bool
	TotalUsage            int
	RemainingCreations    int
}

// Service реализует оркестрацию генерации.
type Service struct {
	llm          Completer
	entitlements Entitlements
	log          *slog.Logger
}

// New создает Service с переданными провайдером генерации и сервисом прав.
func New(llmClient Completer, entitlements Entitlements, log *slog.Logger) *Service {
	return &Service{
		llm:          llmClient,
		entitlements: entitlements,
		log:          log,
	}
}

// Generate проверяет права, вызывает провайдера генерации и записывает
// использование. Порядок жёсткий: исчерпанная квота отклоняется до того,
// как понесена стоимость внешнего вызова; запись использования происходит
// только после успешной генерации, а её сбой логируется и не отменяет
// уже полученный пользователем результат.
func (s *Service) Generate(ctx context.Context, user *models.User, req GenerateRequest) (*Result, error) {
	const op = "generation.Generate"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", user.UID))

	ent, err := s.entitlements.Check(ctx, user.UID)
	if err != nil {
		observeGeneration(req.Mode, "error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ent.Unlimited && ent.Remaining <= 0 {
		observeGeneration(req.Mode, "limit_reached")
		return nil, &LimitReachedError{TotalUsage: ent.UsageCount}
	}

	system, prompt := buildPrompt(req)
	completion, err := s.llm.Complete(ctx, system, prompt)
	if err != nil {
		log.Error("generation provider call failed", sl.Err(err))
		observeGeneration(req.Mode, "provider_error")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	observeGeneration(req.Mode, "ok")
	observeTokens(completion)

	totalUsage := ent.UsageCount
	remaining := ent.Remaining
	if !ent.Unlimited {
		if err := s.entitlements.RecordUsage(ctx, user.UID, req.Mode); err != nil {
			// Генерация уже успешна: сбой учёта не должен наказывать пользователя.
			log.Error("failed to record usage", sl.Err(err))
		} else {
			totalUsage++
			remaining--
		}
	}

	return &Result{
		Content:               completion.Text,
		Usage:                 completion,
		HasActiveSubscription: ent.Unlimited,
		TotalUsage:            totalUsage,
		RemainingCreations:    remaining,
	}, nil
}

// RegenerateSection перегенерирует одну секцию сохранённой проповеди и
// вклеивает её в неизменённый документ. Перегенерация доступна при тех же
// правах, что и генерация, но не расходует бесплатную квоту: документ уже
// был оплачен записью использования при создании.
func (s *Service) RegenerateSection(ctx context.Context, user *models.User, req RegenerateRequest) (*Result, error) {
	const op = "generation.RegenerateSection"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", user.UID))

	ent, err := s.entitlements.Check(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ent.Unlimited && ent.Remaining <= 0 {
		return nil, &LimitReachedError{TotalUsage: ent.UsageCount}
	}

	sections := sermon.Parse(req.OriginalSermon)
	full := req.Section == "full" || req.Section == "illustrations" || sections == nil || !spliceable(req.Section)

	system, prompt := buildRegeneratePrompt(req, full)
	completion, err := s.llm.Complete(ctx, system, prompt)
	if err != nil {
		log.Error("regeneration provider call failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	observeTokens(completion)

	content := completion.Text
	if !full {
		sections.SpliceSection(req.Section, completion.Text)
		content = sermon.Reconstruct(sections)
	}

	return &Result{
		Content:               content,
		Usage:                 completion,
		HasActiveSubscription: ent.Unlimited,
		TotalUsage:            ent.UsageCount,
		RemainingCreations:    ent.Remaining,
	}, nil
}

// FreeLimit возвращает размер бесплатной квоты.
func (s *Service) FreeLimit() int {
	return s.entitlements.FreeLimit()
}

func spliceable(section string) bool {
	switch section {
	case sermon.SectionIntroduction, sermon.SectionApplication, sermon.SectionPoints, sermon.SectionConclusion:
		return true
	}
	return false
}
