// Package workflow реализует пошаговую работу с букетом: анализ фото,
// уточнение состава, отрисовка и заказ. Описание букета хранится в
// переданном хранилище и перезаписывается только после полностью
// успешного вызова нейросети.
package workflow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rpregul/aiflowers/internal/gateway"
	"github.com/rpregul/aiflowers/internal/imaging"
	"github.com/rpregul/aiflowers/pkg/models"
)

// Gateway — то, что воркфлоу требует от шлюза нейросетей.
type Gateway interface {
	Invoke(ctx context.Context, req gateway.Request) (*gateway.Result, error)
}

// Store — то, что воркфлоу требует от хранилища описаний.
type Store interface {
	Get(userID int64) (string, bool)
	Set(userID int64, description string)
}

// Outcome — результат успешного шага. Ошибки шагов возвращаются
// отдельным значением error, и описание в хранилище при них не меняется.
type Outcome struct {
	Kind        models.OutcomeKind
	Description string
	Image       []byte
	Menu        []models.Action
}

// Workflow связывает хранилище описаний со шлюзом нейросетей.
type Workflow struct {
	gw    Gateway
	store Store
	log   *logrus.Entry
}

// New создаёт воркфлоу.
func New(gw Gateway, store Store, log *logrus.Entry) *Workflow {
	return &Workflow{gw: gw, store: store, log: log}
}

// AnalyzePhoto нормализует фото, получает у нейросети состав букета и
// запоминает его. При любой ошибке прежнее состояние пользователя не
// трогается.
func (w *Workflow) AnalyzePhoto(ctx context.Context, userID int64, photo []byte) (Outcome, error) {
	normalized, err := imaging.Normalize(photo)
	if err != nil {
		return Outcome{}, fmt.Errorf("нормализация фото: %w", err)
	}

	res, err := w.gw.Invoke(ctx, gateway.Request{
		Op:     models.OpAnalyze,
		Prompt: analyzePrompt,
		Image:  normalized,
	})
	if err != nil {
		return Outcome{}, err
	}
	if res.Text == "" {
		return Outcome{}, fmt.Errorf("в ответе анализа нет текста")
	}

	w.store.Set(userID, res.Text)
	w.log.WithFields(logrus.Fields{"user_id": userID, "len": len(res.Text)}).Info("Букет проанализирован")

	return Outcome{
		Kind:        models.OutcomeAnalysis,
		Description: res.Text,
		Menu:        models.MenuAfterAnalysis,
	}, nil
}

// Refine просит нейросеть уменьшить или увеличить состав примерно на 20%.
// Отсутствие сохранённого описания не фатально: уточнение уходит с пустым
// текстом, а ответ модели всё равно показывается пользователю.
func (w *Workflow) Refine(ctx context.Context, userID int64, dir models.Direction) (Outcome, error) {
	current, ok := w.store.Get(userID)
	if !ok {
		w.log.WithField("user_id", userID).Warn("Уточнение без сохранённого описания")
	}

	op := models.OpRefineSmaller
	instruction := refineSmallerInstruction
	if dir == models.DirectionLarger {
		op = models.OpRefineLarger
		instruction = refineLargerInstruction
	}

	res, err := w.gw.Invoke(ctx, gateway.Request{
		Op:     op,
		Prompt: instruction + "\n\nТекущий состав букета:\n" + current,
	})
	if err != nil {
		return Outcome{}, err
	}
	if res.Text == "" {
		return Outcome{}, fmt.Errorf("в ответе уточнения нет текста")
	}

	w.store.Set(userID, res.Text)
	w.log.WithFields(logrus.Fields{"user_id": userID, "direction": dir}).Info("Состав букета обновлён")

	return Outcome{
		Kind:        models.OutcomeRefinement,
		Description: res.Text,
		Menu:        models.MenuAfterRefinement,
	}, nil
}

// Render просит нейросеть нарисовать букет по текущему описанию.
// Успешный ответ без картинки — это не ошибка, а отдельный исход:
// пользователю честно сообщается, что отрисовка недоступна.
func (w *Workflow) Render(ctx context.Context, userID int64) (Outcome, error) {
	current, _ := w.store.Get(userID)

	res, err := w.gw.Invoke(ctx, gateway.Request{
		Op:     models.OpRender,
		Prompt: renderPrompt(current),
	})
	if err != nil {
		return Outcome{}, err
	}

	if len(res.Images) == 0 {
		w.log.WithField("user_id", userID).Warn("Модель ответила без картинки")
		return Outcome{
			Kind: models.OutcomeRenderUnavailable,
			Menu: models.MenuAfterRender,
		}, nil
	}

	return Outcome{
		Kind:  models.OutcomeRender,
		Image: res.Images[0],
		Menu:  models.MenuAfterRender,
	}, nil
}

// Order завершает сценарий. Обращений к нейросети нет, описание
// остаётся в хранилище как есть.
func (w *Workflow) Order(userID int64) Outcome {
	w.log.WithField("user_id", userID).Info("Заказ подтверждён")
	return Outcome{Kind: models.OutcomeOrderConfirmed}
}
