package telegram

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wikismart/wikismart/internal/auth"
	"github.com/wikismart/wikismart/internal/models"
	"github.com/wikismart/wikismart/internal/nav"
	"github.com/wikismart/wikismart/internal/views"
	"github.com/wikismart/wikismart/internal/workspace"
)

// historyLimit caps how many entries /history lists.
const historyLimit = 10

func (b *Bot) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	args := strings.Fields(m.CommandArguments())
	if m.From != nil {
		log.Printf("telegram: /%s from %s in chat %d", m.Command(), m.From.UserName, chatID)
	}

	switch m.Command() {
	case cmdStart, cmdHelp:
		b.send(chatID, helpText)
	case cmdLogin:
		b.login(ctx, m, args)
	case cmdLogout:
		c := b.chat(chatID)
		c.auth.Logout()
		c.router.Navigate(nav.ViewLogin)
		b.send(chatID, "Signed out.")
	case cmdSummary:
		b.summary(ctx, chatID, args)
	case cmdQuiz:
		b.startQuiz(ctx, chatID, args)
	case cmdHistory:
		b.history(ctx, chatID)
	default:
		b.send(chatID, "Unknown command. Send /help to see what I can do.")
	}
}

func (b *Bot) login(ctx context.Context, m *tgbotapi.Message, args []string) {
	chatID := m.Chat.ID
	if len(args) != 2 {
		b.send(chatID, "Usage: /login <email> <password>")
		return
	}
	// The message carries a password; keep it out of the chat log.
	b.request(tgbotapi.NewDeleteMessage(chatID, m.MessageID))

	c := b.chat(chatID)
	sess, err := c.auth.Login(ctx, auth.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		// A rejected login is a 401 too; show the backend's reason.
		b.send(chatID, err.Error())
		return
	}
	c.router.Navigate(nav.ViewWorkspace)
	b.send(chatID, fmt.Sprintf("Signed in as %s (%s).", sess.User.Username, sess.User.Email))
}

func (b *Bot) summary(ctx context.Context, chatID int64, args []string) {
	c := b.chat(chatID)
	err := c.guard.Require(func(*models.Session) error {
		res, err := c.ws.Summary.Submit(ctx, workspace.SummaryInput{
			Source:   workspace.Source{URL: firstArg(args)},
			LangCode: b.opts.LangCode,
		})
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		views.Summary(&buf, res)
		b.send(chatID, buf.String())
		return nil
	})
	if err != nil {
		b.send(chatID, describe(err))
	}
}

func (b *Bot) history(ctx context.Context, chatID int64) {
	c := b.chat(chatID)
	err := c.guard.Require(func(*models.Session) error {
		c.router.Navigate(nav.ViewHistory)
		entries, err := c.client.History(ctx)
		if err != nil {
			return err
		}
		if len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}
		var buf bytes.Buffer
		if err := views.History(&buf, entries); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, preBlock(buf.String()))
		msg.ParseMode = tgbotapi.ModeHTML
		b.sendMsg(msg)
		return nil
	})
	if err != nil {
		b.send(chatID, describe(err))
	}
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64, args []string) {
	c := b.chat(chatID)
	err := c.guard.Require(func(*models.Session) error {
		c.router.Navigate(nav.ViewWorkspace)
		c.ws.RestartQuiz()
		c.quizGen++
		res, err := c.ws.Quiz.Submit(ctx, workspace.QuizInput{
			Source:   workspace.Source{URL: firstArg(args)},
			LangCode: b.opts.LangCode,
		})
		if err != nil {
			return err
		}
		b.send(chatID, fmt.Sprintf("Quiz: %s (%d questions)", res.Heading(), len(res.Quiz.Quiz)))
		b.sendQuestion(c)
		return nil
	})
	if err != nil {
		b.send(chatID, describe(err))
	}
}

// sendQuestion shows the current question with one button per option.
func (b *Bot) sendQuestion(c *chat) {
	s := c.ws.Attempt()
	if s == nil {
		return
	}
	var buf bytes.Buffer
	views.Question(&buf, s)
	q := s.Current()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options))
	for i, opt := range q.Options {
		data := callbackData(c, callbackAnswer, s.Index(), i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(opt, data)))
	}
	msg := tgbotapi.NewMessage(c.id, clip(buf.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMsg(msg)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		b.request(tgbotapi.NewCallback(cb.ID, ""))
		return
	}
	c := b.chat(cb.Message.Chat.ID)
	action, gen, args, ok := parseCallback(cb.Data)
	var notice string
	switch {
	case !ok:
		notice = "Unknown action"
	case c.ws.Attempt() == nil:
		notice = "No quiz in progress"
	case gen != c.quizGen:
		notice = "That quiz is over"
	case action == callbackAnswer && len(args) == 2:
		notice = b.answer(c, args[0], args[1])
	case action == callbackNext && len(args) == 0:
		notice = b.next(ctx, c)
	case action == callbackRetry && len(args) == 0:
		notice = b.retry(c)
	default:
		notice = "Unknown action"
	}
	b.request(tgbotapi.NewCallback(cb.ID, notice))
}

// answer records the picked option. Buttons of earlier questions or of an
// already answered one are ignored.
func (b *Bot) answer(c *chat, qi, oi int) string {
	s := c.ws.Attempt()
	if s.Finished() {
		return "No quiz in progress"
	}
	if qi != s.Index() || s.Revealed() {
		return "That question is closed"
	}
	opts := s.Current().Options
	if oi < 0 || oi >= len(opts) {
		return "Unknown option"
	}
	if err := s.SelectAnswer(opts[oi]); err != nil {
		return err.Error()
	}

	var buf bytes.Buffer
	views.Reveal(&buf, s)
	label := "Next"
	if s.Index() == s.Len()-1 {
		label = "See score"
	}
	msg := tgbotapi.NewMessage(c.id, buf.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, callbackData(c, callbackNext))),
	)
	b.sendMsg(msg)
	return ""
}

func (b *Bot) next(ctx context.Context, c *chat) string {
	s := c.ws.Attempt()
	if s.Finished() {
		return "No quiz in progress"
	}
	if err := s.Advance(); err != nil {
		return "Pick an answer first"
	}
	if !s.Finished() {
		b.sendQuestion(c)
		return ""
	}

	var buf bytes.Buffer
	if err := views.Score(&buf, s); err != nil {
		return err.Error()
	}
	res, err := c.ws.SubmitAttempt(ctx)
	if err != nil {
		fmt.Fprintf(&buf, "Could not record the attempt: %s\n", describe(err))
	} else {
		views.Submitted(&buf, res)
	}
	msg := tgbotapi.NewMessage(c.id, buf.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Try again", callbackData(c, callbackRetry))),
	)
	b.sendMsg(msg)
	return ""
}

// retry restarts a finished attempt. A "Try again" left on an earlier
// score message does nothing while the quiz is being replayed, and the
// buttons of the previous play stop working.
func (b *Bot) retry(c *chat) string {
	s := c.ws.Attempt()
	if !s.Finished() {
		return "Finish the quiz first"
	}
	s.Restart()
	c.quizGen++
	b.sendQuestion(c)
	return ""
}

func callbackData(c *chat, action string, args ...int) string {
	parts := []string{action, strconv.Itoa(c.quizGen)}
	for _, a := range args {
		parts = append(parts, strconv.Itoa(a))
	}
	return strings.Join(parts, ":")
}

// parseCallback splits callback data into its action, quiz counter and
// numeric arguments.
func parseCallback(data string) (string, int, []int, bool) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return "", 0, nil, false
	}
	gen, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, nil, false
	}
	args := make([]int, 0, len(parts)-2)
	for _, p := range parts[2:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, nil, false
		}
		args = append(args, n)
	}
	return parts[0], gen, args, true
}

// preBlock escapes text into a <pre> block that fits in one message. The
// cut never splits an HTML entity.
func preBlock(text string) string {
	const openTag, closeTag = "<pre>", "</pre>"
	body := html.EscapeString(text)
	limit := maxMessageLen - len(openTag) - len(closeTag)
	if len(body) > limit {
		body = strings.TrimSuffix(clipTo(body, limit), "...")
		if amp := strings.LastIndexByte(body, '&'); amp >= 0 && !strings.Contains(body[amp:], ";") {
			body = body[:amp]
		}
		body += "..."
	}
	return openTag + body + closeTag
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
