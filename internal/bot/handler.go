package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/rpregul/aiflowers/internal/imaging"
	"github.com/rpregul/aiflowers/internal/workflow"
	"github.com/rpregul/aiflowers/pkg/locales"
	"github.com/rpregul/aiflowers/pkg/models"
)

// Телеграм не отдаёт фото больше 20 МБ, ограничение на скачивание с запасом.
const maxPhotoDownload = 20 << 20

// Bot представляет Telegram бота
type Bot struct {
	api        *tgbotapi.BotAPI
	wf         *workflow.Workflow
	log        *logrus.Entry
	downloader *http.Client
}

// New создает нового бота
func New(token string, wf *workflow.Workflow, log *logrus.Entry) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}

	log.Infof("Авторизован как @%s", api.Self.UserName)

	return &Bot{
		api:        api,
		wf:         wf,
		log:        log,
		downloader: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Start запускает обработку обновлений
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate обрабатывает входящее обновление. Паника в обработчике
// одного диалога не должна ронять процесс для остальных.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("panic", r).Error("Паника при обработке обновления")
		}
	}()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage обрабатывает сообщения: фото уходит в анализ,
// любой текст получает справку.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	l := locales.Get()
	text := l.Help.Default
	if msg.IsCommand() && msg.Command() == "start" {
		text = l.Help.Start
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(reply); err != nil {
		b.log.WithError(err).Error("Не удалось отправить справку")
	}
}

// handlePhoto скачивает фото и запускает анализ букета.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	l := locales.Get()
	userID := msg.From.ID
	chatID := msg.Chat.ID

	waitID, ok := b.sendWaiting(chatID, l.Analyze.Waiting)
	if !ok {
		return
	}

	// Телеграм присылает несколько размеров, берём самый крупный.
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	photo, err := b.downloadPhoto(fileID)
	if err != nil {
		b.log.WithError(err).WithField("user_id", userID).Error("Не удалось скачать фото")
		b.editText(chatID, waitID, l.Errors.BadPhoto, nil)
		return
	}

	out, err := b.wf.AnalyzePhoto(ctx, userID, photo)
	if err != nil {
		// До первого успешного анализа меню у пользователя не было.
		b.presentError(chatID, waitID, userID, err, nil)
		return
	}

	b.editText(chatID, waitID, fmt.Sprintf(l.Analyze.Header, out.Description), keyboardFor(out.Menu))
}

// handleCallback обрабатывает нажатия на inline-кнопки
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем на callback чтобы убрать "часики"
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.WithError(err).Warn("Не удалось ответить на callback")
	}

	// Для сообщений старше ~48 часов Телеграм присылает callback
	// без сообщения: отредактировать там нечего.
	if callback.Message == nil {
		b.log.WithField("data", callback.Data).Warn("Callback без сообщения, игнорирую")
		return
	}

	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	msgID := callback.Message.MessageID

	// Клавиатура, которая была на сообщении до нажатия: при ошибке
	// действия она возвращается, чтобы кнопки не пропадали.
	prev := callback.Message.ReplyMarkup

	switch models.Action(callback.Data) {
	case models.ActionShrink:
		b.refine(ctx, chatID, msgID, userID, models.DirectionSmaller, prev)
	case models.ActionEnlarge:
		b.refine(ctx, chatID, msgID, userID, models.DirectionLarger, prev)
	case models.ActionDraw:
		b.render(ctx, chatID, msgID, userID, prev)
	case models.ActionOrder:
		b.order(chatID, msgID, userID)
	default:
		b.log.WithField("data", callback.Data).Warn("Неизвестная кнопка")
	}
}

// refine запускает уточнение состава и показывает обновлённое описание.
func (b *Bot) refine(ctx context.Context, chatID int64, msgID int, userID int64, dir models.Direction, prev *tgbotapi.InlineKeyboardMarkup) {
	l := locales.Get()

	waiting := l.Refine.WaitingSmaller
	if dir == models.DirectionLarger {
		waiting = l.Refine.WaitingLarger
	}
	b.editText(chatID, msgID, waiting, nil)

	out, err := b.wf.Refine(ctx, userID, dir)
	if err != nil {
		b.presentError(chatID, msgID, userID, err, prev)
		return
	}

	b.editText(chatID, msgID, fmt.Sprintf(l.Refine.Header, out.Description), keyboardFor(out.Menu))
}

// render просит воркфлоу нарисовать букет и отправляет картинку.
func (b *Bot) render(ctx context.Context, chatID int64, msgID int, userID int64, prev *tgbotapi.InlineKeyboardMarkup) {
	l := locales.Get()
	b.editText(chatID, msgID, l.Render.Waiting, nil)

	out, err := b.wf.Render(ctx, userID)
	if err != nil {
		b.presentError(chatID, msgID, userID, err, prev)
		return
	}

	if out.Kind == models.OutcomeRenderUnavailable {
		b.editText(chatID, msgID, l.Render.Unavailable, keyboardFor(out.Menu))
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "bouquet.jpg", Bytes: out.Image})
	photo.Caption = l.Render.Caption
	if kb := keyboardFor(out.Menu); kb != nil {
		photo.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(photo); err != nil {
		b.log.WithError(err).WithField("user_id", userID).Error("Не удалось отправить картинку")
		b.editText(chatID, msgID, l.Render.Unavailable, keyboardFor(out.Menu))
		return
	}

	// Сообщение "Рисую..." больше не нужно.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		b.log.WithError(err).Warn("Не удалось удалить служебное сообщение")
	}
}

// order подтверждает заказ. Клавиатура убирается: сценарий завершён.
func (b *Bot) order(chatID int64, msgID int, userID int64) {
	l := locales.Get()
	out := b.wf.Order(userID)
	if out.Kind == models.OutcomeOrderConfirmed {
		b.editText(chatID, msgID, l.Order.Confirmed, nil)
	}
}

// presentError переводит ошибку воркфлоу в короткое сообщение пользователю
// и возвращает клавиатуру, действовавшую до неудачного шага: ошибка
// допускает повтор, кнопки пропадать не должны. Сырые ответы провайдеров
// до пользователя не доходят.
func (b *Bot) presentError(chatID int64, msgID int, userID int64, err error, prev *tgbotapi.InlineKeyboardMarkup) {
	b.log.WithError(err).WithField("user_id", userID).Error("Шаг воркфлоу завершился ошибкой")
	b.editText(chatID, msgID, errorText(err), prev)
}

// errorText подбирает текст ошибки для пользователя по её типу.
func errorText(err error) string {
	l := locales.Get()
	if errors.Is(err, imaging.ErrDecode) {
		return l.Errors.BadPhoto
	}
	return l.Errors.Upstream
}

// sendWaiting отправляет служебное сообщение и возвращает его ID.
func (b *Bot) sendWaiting(chatID int64, text string) (int, bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.WithError(err).Error("Не удалось отправить служебное сообщение")
		return 0, false
	}
	return sent.MessageID, true
}

// editText редактирует сообщение, при неудаче отправляет новое.
func (b *Bot) editText(chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	editMsg := tgbotapi.NewEditMessageText(chatID, msgID, text)
	editMsg.ParseMode = "Markdown"
	editMsg.ReplyMarkup = keyboard

	if _, err := b.api.Send(editMsg); err != nil {
		// Если редактирование не удалось, отправляем новое
		b.log.WithError(err).Warn("Не удалось отредактировать сообщение")
		newMsg := tgbotapi.NewMessage(chatID, text)
		newMsg.ParseMode = "Markdown"
		if keyboard != nil {
			newMsg.ReplyMarkup = *keyboard
		}
		if _, err := b.api.Send(newMsg); err != nil {
			b.log.WithError(err).Error("Не удалось отправить сообщение")
		}
	}
}

// downloadPhoto скачивает файл фото с серверов Телеграма.
func (b *Bot) downloadPhoto(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("получение ссылки на файл: %w", err)
	}

	resp, err := b.downloader.Get(url)
	if err != nil {
		return nil, fmt.Errorf("скачивание файла: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("скачивание файла: статус %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoDownload))
	if err != nil {
		return nil, fmt.Errorf("чтение файла: %w", err)
	}
	return data, nil
}
