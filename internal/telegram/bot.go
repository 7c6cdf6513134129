// Package telegram is a chat front end for the summary and quiz tools. Every
// chat signs in on its own and plays its own quiz attempt.
package telegram

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wikismart/wikismart/internal/auth"
	"github.com/wikismart/wikismart/internal/client"
	"github.com/wikismart/wikismart/internal/guard"
	"github.com/wikismart/wikismart/internal/nav"
	"github.com/wikismart/wikismart/internal/workspace"
)

// API is the part of *tgbotapi.BotAPI the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// StoreFunc returns the durable session store of one chat.
type StoreFunc func(chatID int64) auth.Store

type Options struct {
	APIURL     string
	Timeout    time.Duration
	LangCode   string
	HTTPClient client.HTTPClient
}

// maxMessageLen is Telegram's limit on the text of one message.
const maxMessageLen = 4096

const (
	cmdStart   = "start"
	cmdHelp    = "help"
	cmdLogin   = "login"
	cmdLogout  = "logout"
	cmdSummary = "summary"
	cmdQuiz    = "quiz"
	cmdHistory = "history"

	// Callback data is "<action>:<quiz>[:<question>:<option>]" where quiz
	// is the chat's quiz counter when the button was sent.
	callbackAnswer = "answer"
	callbackNext   = "next"
	callbackRetry  = "retry"
)

const helpText = `WikiSmart turns Wikipedia articles into summaries and quizzes.

/login <email> <password> - sign in
/logout - sign out
/summary <url> - summarize an article
/quiz <url> - play a quiz on an article
/history - your latest activity`

type Bot struct {
	api    API
	stores StoreFunc
	opts   Options

	mu    sync.Mutex
	chats map[int64]*chat
}

// chat is the object graph of one conversation. Nothing in it is shared
// with another chat.
type chat struct {
	id     int64
	client *client.Client
	auth   *auth.Service
	router *nav.Router
	guard  *guard.Guard
	ws     *workspace.Workspace

	// quizGen changes with every new quiz or replay; buttons carrying an
	// older value are refused.
	quizGen int
}

func New(api API, stores StoreFunc, opts Options) *Bot {
	return &Bot{
		api:    api,
		stores: stores,
		opts:   opts,
		chats:  make(map[int64]*chat),
	}
}

// chat returns the state of chatID, restoring its session from the store
// on first use.
func (b *Bot) chat(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.chats[chatID]; ok {
		return c
	}
	cl := client.New(client.Options{BaseURL: b.opts.APIURL, Timeout: b.opts.Timeout, HTTPClient: b.opts.HTTPClient})
	var store auth.Store
	if b.stores != nil {
		store = b.stores(chatID)
	}
	svc := auth.New(cl, store)
	cl.SetTokenSource(svc)

	start := nav.ViewWorkspace
	if svc.Current() == nil {
		start = nav.ViewLogin
	}
	router := nav.NewRouter(start)
	cl.OnUnauthorized(client.NewUnauthorizedPolicy(svc, router))

	c := &chat{
		id:     chatID,
		client: cl,
		auth:   svc,
		router: router,
		guard:  guard.New(svc, router),
		ws:     workspace.New(cl),
	}
	b.chats[chatID] = c
	return c
}

// Run handles updates one at a time until ctx is done or updates closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	log.Println("telegram: polling for updates")
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			b.Handle(ctx, u)
		}
	}
}

func (b *Bot) Handle(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.IsCommand():
		b.handleCommand(ctx, u.Message)
	case u.Message != nil:
		b.send(u.Message.Chat.ID, helpText)
	}
}

func (b *Bot) send(chatID int64, text string) {
	b.sendMsg(tgbotapi.NewMessage(chatID, clip(text)))
}

func (b *Bot) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("telegram: send to chat %d: %v", msg.ChatID, err)
	}
}

func (b *Bot) request(c tgbotapi.Chattable) {
	if _, err := b.api.Request(c); err != nil {
		log.Printf("telegram: request: %v", err)
	}
}

// describe turns an error into the reply shown in the chat.
func describe(err error) string {
	switch {
	case errors.Is(err, guard.ErrNoSession):
		return "You are not signed in. Send /login <email> <password> first."
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has ended. Send /login <email> <password> to sign in again."
	case errors.Is(err, workspace.ErrInFlight):
		return "Still working on your previous request."
	}
	return err.Error()
}

func clip(text string) string {
	return clipTo(text, maxMessageLen)
}

// clipTo shortens text to at most limit bytes, ending in "..." when cut.
func clipTo(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit - len("...")
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
