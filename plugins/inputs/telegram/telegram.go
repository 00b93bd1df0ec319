package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/gekatateam/parrot/core"
	"github.com/gekatateam/parrot/metrics"
	"github.com/gekatateam/parrot/plugins"
	"github.com/gekatateam/parrot/plugins/common/elog"
	"github.com/gekatateam/parrot/plugins/common/retryer"
)

type Telegram struct {
	*core.BaseInput  `mapstructure:"-"`
	Token            string        `mapstructure:"api_token"`
	PollTimeout      time.Duration `mapstructure:"poll_timeout"`
	PollLimit        int           `mapstructure:"poll_limit"`
	Debug            bool          `mapstructure:"debug"`
	*retryer.Retryer `mapstructure:",squash"`

	client *http.Client
	bot    *tgbotapi.BotAPI
	nick   *regexp.Regexp
	offset int
}

func (i *Telegram) Init() error {
	if len(i.Token) == 0 {
		return errors.New("api_token required")
	}

	if i.PollTimeout < time.Second {
		return errors.New("poll_timeout must be at least one second")
	}

	if i.client == nil {
		i.client = &http.Client{
			Timeout: i.PollTimeout + 10*time.Second,
		}
	}

	api, err := tgbotapi.NewBotAPIWithClient(i.Token, i.client)
	if err != nil {
		return err
	}
	api.Debug = i.Debug
	i.bot = api

	i.nick, err = nickPattern(i.Bot, api.Self.UserName)
	if err != nil {
		return err
	}

	i.Log.Info("authorized on telegram",
		"username", api.Self.UserName,
	)
	return nil
}

func (i *Telegram) Close() error {
	if i.client != nil {
		i.client.CloseIdleConnections()
	}
	return nil
}

// Run polls updates until ctx is done. Cancellation is noticed
// between polls, so it may take up to poll_timeout.
func (i *Telegram) Run(ctx context.Context, d core.Dispatcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		u := tgbotapi.NewUpdate(i.offset)
		u.Timeout = int(i.PollTimeout.Seconds())
		u.Limit = i.PollLimit

		updates, err := i.bot.GetUpdates(u)
		if err != nil {
			i.Log.Error("updates polling failed",
				"error", err,
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(i.RetryAfter):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= i.offset {
				i.offset = update.UpdateID + 1
			}

			if update.Message == nil || len(update.Message.Text) == 0 {
				continue
			}

			i.handle(ctx, d, update.Message)
		}
	}
}

func (i *Telegram) handle(ctx context.Context, d core.Dispatcher, m *tgbotapi.Message) {
	now := time.Now()

	e := i.toEvent(m)
	e.ReplaceContext(ctx)

	e = d.Dispatch(e)
	if len(e.Responses) == 0 {
		i.Observe(metrics.EventSkipped, time.Since(now))
		return
	}

	status := metrics.EventAccepted
	for _, r := range e.Responses {
		chatId, err := strconv.ParseInt(r.Target, 10, 64)
		if err != nil {
			i.Log.Error("reply target is not a chat id",
				"target", r.Target,
				elog.EventGroup(e),
			)
			status = metrics.EventFailed
			continue
		}

		msg := tgbotapi.NewMessage(chatId, r.Reply)
		if e.Public && chatId == m.Chat.ID {
			msg.ReplyToMessageID = m.MessageID
		}

		err = i.Retryer.Do(ctx, "send telegram message", i.Log, func() error {
			_, err := i.bot.Send(msg)
			return err
		})
		if err != nil {
			i.Log.Error("send message failed",
				"error", err,
				elog.EventGroup(e),
			)
			status = metrics.EventFailed
		}
	}

	i.Observe(status, time.Since(now))
}

func (i *Telegram) toEvent(m *tgbotapi.Message) *core.Event {
	e := core.NewEvent(i.Alias, core.EventMessage)
	e.Timestamp = m.Time()
	e.Channel = strconv.FormatInt(m.Chat.ID, 10)
	e.Public = !m.Chat.IsPrivate()

	if m.From != nil {
		e.Sender = m.From.UserName
		if len(e.Sender) == 0 {
			e.Sender = strconv.Itoa(m.From.ID)
		}
	}

	e.Message, e.Addressed = address(i.nick, m.Text, !e.Public)
	return e
}

// nickPattern matches a message that starts by calling the bot,
// as "@nick text", "nick: text" or "nick, text".
// A bare "nick text" is not a call.
func nickPattern(names ...string) (*regexp.Regexp, error) {
	var quoted []string
	for _, n := range names {
		if len(n) > 0 {
			quoted = append(quoted, regexp.QuoteMeta(n))
		}
	}

	if len(quoted) == 0 {
		return nil, errors.New("bot has no name to be addressed by")
	}

	alt := strings.Join(quoted, "|")
	return regexp.Compile(fmt.Sprintf(`(?i)^\s*(?:@(?:%v)[:,]?\s+|(?:%v)\s*[:,]\s*)(.*)$`, alt, alt))
}

// address strips the bot call from text. Commands and private
// messages are addressed even without a call.
func address(nick *regexp.Regexp, text string, private bool) (string, bool) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/") {
		command, args, _ := strings.Cut(text[1:], " ")
		command, _, _ = strings.Cut(command, "@")
		return strings.TrimSpace(command + " " + args), true
	}

	if match := nick.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1]), true
	}

	return text, private
}

func init() {
	plugins.AddInput("telegram", func() core.Input {
		return &Telegram{
			PollTimeout: 30 * time.Second,
			PollLimit:   100,
			Retryer: &retryer.Retryer{
				RetryAttempts: 3,
				RetryAfter:    5 * time.Second,
			},
		}
	})
}
