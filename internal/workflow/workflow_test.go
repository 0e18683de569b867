package workflow

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rpregul/aiflowers/internal/gateway"
	"github.com/rpregul/aiflowers/internal/imaging"
	"github.com/rpregul/aiflowers/internal/storage"
	"github.com/rpregul/aiflowers/pkg/models"
)

type fakeGateway struct {
	calls  []gateway.Request
	invoke func(req gateway.Request) (*gateway.Result, error)
}

func (f *fakeGateway) Invoke(_ context.Context, req gateway.Request) (*gateway.Result, error) {
	f.calls = append(f.calls, req)
	return f.invoke(req)
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testPhoto(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 100)), nil))
	return buf.Bytes()
}

func newWorkflow(gw *fakeGateway) (*Workflow, *storage.Store) {
	store := storage.New()
	return New(gw, store, testLog()), store
}

// Сценарий: фото проанализировано, описание сохранено, меню полное.
func TestAnalyzePhoto_Success(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Text: "5 роз, 3 лилии, ~2500 руб."}, nil
	}}
	w, store := newWorkflow(gw)

	out, err := w.AnalyzePhoto(context.Background(), 42, testPhoto(t))
	require.NoError(t, err)
	require.Equal(t, models.OutcomeAnalysis, out.Kind)
	require.Equal(t, "5 роз, 3 лилии, ~2500 руб.", out.Description)
	require.Equal(t, models.MenuAfterAnalysis, out.Menu)

	stored, ok := store.Get(42)
	require.True(t, ok)
	require.Equal(t, "5 роз, 3 лилии, ~2500 руб.", stored, "в хранилище ровно тот текст, что вернул шлюз")

	require.Len(t, gw.calls, 1)
	require.Equal(t, models.OpAnalyze, gw.calls[0].Op)
	require.NotEmpty(t, gw.calls[0].Image, "нормализованное фото уходит вместе с промптом")
}

func TestAnalyzePhoto_UndecodablePhoto(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		t.Fatal("шлюз не должен вызываться для нечитаемого фото")
		return nil, nil
	}}
	w, store := newWorkflow(gw)

	_, err := w.AnalyzePhoto(context.Background(), 42, []byte("мусор"))
	require.Error(t, err)
	require.ErrorIs(t, err, imaging.ErrDecode)

	_, ok := store.Get(42)
	require.False(t, ok, "состояние не создаётся при ошибке декодирования")
}

// Сценарий: все кандидаты анализа недоступны — состояние отсутствует.
func TestAnalyzePhoto_AllCandidatesFailed(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return nil, &gateway.AllCandidatesFailedError{Op: req.Op, Last: errors.New("статус 502")}
	}}
	w, store := newWorkflow(gw)

	_, err := w.AnalyzePhoto(context.Background(), 42, testPhoto(t))
	require.Error(t, err)

	var allFailed *gateway.AllCandidatesFailedError
	require.ErrorAs(t, err, &allFailed)

	_, ok := store.Get(42)
	require.False(t, ok, "хранилище не получает строку ошибки вместо описания")
}

// Сценарий: уменьшение перезаписывает описание, меню без кнопок уточнения.
func TestRefine_SmallerSuccess(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Text: "4 розы, 2 лилии, ~2000 руб."}, nil
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	out, err := w.Refine(context.Background(), 42, models.DirectionSmaller)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRefinement, out.Kind)
	require.Equal(t, "4 розы, 2 лилии, ~2000 руб.", out.Description)
	require.Equal(t, models.MenuAfterRefinement, out.Menu)
	require.NotContains(t, out.Menu, models.ActionShrink)
	require.NotContains(t, out.Menu, models.ActionEnlarge)

	stored, _ := store.Get(42)
	require.Equal(t, "4 розы, 2 лилии, ~2000 руб.", stored)

	require.Equal(t, models.OpRefineSmaller, gw.calls[0].Op)
	require.Contains(t, gw.calls[0].Prompt, "Уменьши состав букета примерно на 20%")
	require.Contains(t, gw.calls[0].Prompt, "5 роз, 3 лилии, ~2500 руб.", "текущее описание идёт в промпт")
}

func TestRefine_LargerUsesLargerOp(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Text: "6 роз, 4 лилии, ~3000 руб."}, nil
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	out, err := w.Refine(context.Background(), 42, models.DirectionLarger)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRefinement, out.Kind)
	require.Equal(t, models.OpRefineLarger, gw.calls[0].Op)
	require.Contains(t, gw.calls[0].Prompt, "Увеличь состав букета примерно на 20%")
}

// Сценарий: неудачное уточнение не трогает прежнее описание.
func TestRefine_FailureKeepsPreviousDescription(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return nil, &gateway.AllCandidatesFailedError{Op: req.Op}
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	_, err := w.Refine(context.Background(), 42, models.DirectionSmaller)
	require.Error(t, err)

	stored, ok := store.Get(42)
	require.True(t, ok)
	require.Equal(t, "5 роз, 3 лилии, ~2500 руб.", stored, "частичной перезаписи быть не должно")
}

// Сценарий: модель ответила успешно, но без текста (только картинкой) —
// для уточнения это отказ, прежнее описание не трогается.
func TestRefine_TextlessResponseKeepsDescription(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Images: [][]byte{[]byte("jpeg-bytes")}}, nil
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	_, err := w.Refine(context.Background(), 42, models.DirectionSmaller)
	require.Error(t, err)
	require.Contains(t, err.Error(), "нет текста")

	stored, ok := store.Get(42)
	require.True(t, ok)
	require.Equal(t, "5 роз, 3 лилии, ~2500 руб.", stored)
}

// Сценарий: уточнение без единого анализа в истории — работаем с пустым
// описанием и не падаем.
func TestRefine_WithoutPriorAnalysis(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Text: "небольшой букет из 5 роз"}, nil
	}}
	w, store := newWorkflow(gw)

	out, err := w.Refine(context.Background(), 99, models.DirectionSmaller)
	require.NoError(t, err)
	require.Equal(t, "небольшой букет из 5 роз", out.Description)

	require.Contains(t, gw.calls[0].Prompt, "Текущий состав букета:")

	stored, ok := store.Get(99)
	require.True(t, ok)
	require.Equal(t, "небольшой букет из 5 роз", stored)
}

func TestRender_Success(t *testing.T) {
	picture := []byte("jpeg-bytes")
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Images: [][]byte{picture}}, nil
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	out, err := w.Render(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRender, out.Kind)
	require.Equal(t, picture, out.Image)
	require.Equal(t, models.MenuAfterRender, out.Menu)

	require.Equal(t, models.OpRender, gw.calls[0].Op)
	require.Contains(t, gw.calls[0].Prompt, "5 роз, 3 лилии, ~2500 руб.")
}

// Сценарий: успешный ответ без картинки — явное «отрисовка недоступна»,
// состояние не меняется.
func TestRender_SuccessWithoutImage(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return &gateway.Result{Text: "не могу нарисовать"}, nil
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	out, err := w.Render(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRenderUnavailable, out.Kind)
	require.Empty(t, out.Image)
	require.Equal(t, models.MenuAfterRender, out.Menu)

	stored, _ := store.Get(42)
	require.Equal(t, "5 роз, 3 лилии, ~2500 руб.", stored)
}

func TestRender_FailureKeepsState(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		return nil, &gateway.AllCandidatesFailedError{Op: req.Op}
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "описание")

	_, err := w.Render(context.Background(), 42)
	require.Error(t, err)

	stored, _ := store.Get(42)
	require.Equal(t, "описание", stored)
}

func TestOrder_NoGatewayCalls(t *testing.T) {
	gw := &fakeGateway{invoke: func(req gateway.Request) (*gateway.Result, error) {
		t.Fatal("заказ не должен обращаться к нейросети")
		return nil, nil
	}}
	w, store := newWorkflow(gw)
	store.Set(42, "5 роз, 3 лилии, ~2500 руб.")

	out := w.Order(42)
	require.Equal(t, models.OutcomeOrderConfirmed, out.Kind)
	require.Empty(t, out.Menu)
	require.Empty(t, gw.calls)

	stored, ok := store.Get(42)
	require.True(t, ok)
	require.Equal(t, "5 роз, 3 лилии, ~2500 руб.", stored, "описание остаётся после заказа")
}
